package sensitivedata

import (
	"io"
	"sync"
)

// Writer wraps an io.Writer and scrubs secrets before writing.
// Thread-safe: can be used concurrently by multiple goroutines.
type Writer struct {
	underlying io.Writer
	scanner    *Scanner
	mu         sync.Mutex // Protects writes to underlying writer
}

// NewWriter creates a writer that scrubs sensitive patterns.
func NewWriter(w io.Writer, s *Scanner) *Writer {
	return &Writer{
		underlying: w,
		scanner:    s,
	}
}

// Write implements io.Writer, scrubbing data before passing it on.
func (w *Writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.scanner == nil {
		return w.underlying.Write(p)
	}

	n, err = w.underlying.Write([]byte(w.scanner.ScrubString(string(p))))

	// Return original length to caller (io.Writer contract expects len(p))
	if err == nil {
		n = len(p)
	}
	return n, err
}
