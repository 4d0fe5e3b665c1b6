package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPurgerRejectsBadSchedule(t *testing.T) {
	m, _, _ := newTestManager(t, newFakeRepo())
	_, err := NewPurger(m, "every now and then", nil)
	assert.Error(t, err)
}

func TestPurgerDefaultSchedule(t *testing.T) {
	m, _, _ := newTestManager(t, newFakeRepo())
	p, err := NewPurger(m, "", nil)
	require.NoError(t, err)
	assert.Len(t, p.cron.Entries(), 1)
}

func TestPurgerRunsManager(t *testing.T) {
	repo := newFakeRepo()
	m, _, _ := newTestManager(t, repo)
	p, err := NewPurger(m, "@every 1s", nil)
	require.NoError(t, err)

	p.Start()
	defer func() { <-p.Stop().Done() }()

	assert.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.before) > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestPurgerRunDirect(t *testing.T) {
	repo := newFakeRepo()
	m, _, _ := newTestManager(t, repo)
	p, err := NewPurger(m, "", nil)
	require.NoError(t, err)

	p.run()
	require.Len(t, repo.before, 1)

	ctx := p.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("stop did not complete")
	}
}
