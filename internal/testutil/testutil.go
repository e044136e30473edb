// Package testutil provides shared helpers for tests: a thread-safe log
// buffer and fixtures for temporary backing documents.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/rockiq/internal/docstore"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SampleDocument is a small but representative backing document: a leading
// unrelated section that must survive persists untouched, plus a sequence
// exercising dotted modules, references, and typed parameters.
const SampleDocument = `section: GeneralConfig
version: 3
---
section: SequenceConfig
sequences:
  - id: 0
    name: Demo pipeline
    module_sequence:
      - module: cLoader.read_image
        path: ./data/img.png
        outputs:
          image: {}
      - module: cFilter.denoise
        filter_size: 13
        simulate: false
        ref_image:
          module: read_image
          name: image
          order: 1
      - module: cFilter.threshold
        level: 0.5
        ref_image:
          module: denoise
          name: cleaned
          order: 1
  - id: 1
    name: Empty
    module_sequence: []
`

// WriteDocument writes content to a fresh temp file and returns its path.
func WriteDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// NewFileStore writes content to a temp file and returns a store over it
// together with the file path.
func NewFileStore(t *testing.T, content string) (*docstore.FileStore, string) {
	t.Helper()
	path := WriteDocument(t, content)
	return docstore.NewFileStore(path), path
}
