package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	o.RecordOptimize(OutcomeOptimized)
	o.RecordOptimize(OutcomePassthrough)
	o.RecordOptimize(OutcomePassthrough)
	assert.Equal(t, 1.0, testutil.ToFloat64(o.optimizeTotal.WithLabelValues(OutcomeOptimized)))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.optimizeTotal.WithLabelValues(OutcomePassthrough)))

	o.RecordUpload("restaurants", 10*time.Millisecond, 1024, nil)
	o.RecordUpload("restaurants", 10*time.Millisecond, 99, errors.New("boom"))
	assert.Equal(t, 1024.0, testutil.ToFloat64(o.uploadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.uploadErrors.WithLabelValues("restaurants")))

	o.RecordPurge(3, nil)
	o.RecordPurge(0, errors.New("offline"))
	assert.Equal(t, 3.0, testutil.ToFloat64(o.purgedRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.purgeRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.purgeRuns.WithLabelValues("error")))
}

func TestUploadLabelUsesTopLevelNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	o.RecordUpload("restaurants/r-1", time.Millisecond, 10, nil)
	o.RecordUpload("restaurants/r-2", time.Millisecond, 10, errors.New("boom"))
	o.RecordUpload("restaurants/r-2/logos", time.Millisecond, 10, errors.New("boom"))

	assert.Equal(t, 1, testutil.CollectAndCount(o.uploadDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(o.uploadErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.uploadErrors.WithLabelValues("restaurants")))

	o.RecordUpload("menu-items", time.Millisecond, 10, nil)
	assert.Equal(t, 2, testutil.CollectAndCount(o.uploadDuration))
}

func TestNilObserverIsSafe(t *testing.T) {
	var o *PrometheusObserver
	assert.NotPanics(t, func() {
		o.RecordOptimize(OutcomeOptimized)
		o.RecordUpload("x", time.Second, 1, nil)
		o.RecordPurge(1, nil)
	})
}

func TestObserversOnSameRegistryShareSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusObserver("shared", reg)
	require.NoError(t, err)
	second, err := NewPrometheusObserver("shared", reg)
	require.NoError(t, err)

	second.RecordPurge(2, nil)
	assert.Equal(t, 2.0, testutil.ToFloat64(first.purgedRows))
}
