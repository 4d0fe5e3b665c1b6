package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Asset is a binary payload with its declared media type and original name.
// The core never retains an Asset after an upload completes.
type Asset struct {
	Name        string
	ContentType string
	Data        []byte
}

// BaseName returns the asset name without its extension.
func (a *Asset) BaseName() string {
	name := filepath.Base(a.Name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Ext returns the lowercased extension of the asset name including the dot,
// or "" if the name has none.
func (a *Asset) Ext() string {
	return strings.ToLower(filepath.Ext(a.Name))
}

// Size returns the payload length in bytes.
func (a *Asset) Size() int {
	return len(a.Data)
}

// UploadedReference is the durable result of a successful upload.
type UploadedReference struct {
	URL         string    `json:"url"`
	Path        string    `json:"path"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	Uploaded    time.Time `json:"uploaded"`
}
