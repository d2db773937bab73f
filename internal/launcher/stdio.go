package launcher

import (
	"io"
	"os"
	"sync"
)

// LockedWriter serializes writes from launches that share one stream.
type LockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *LockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// LockedReader serializes reads from launches that share one input stream.
type LockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (r *LockedReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Read(p)
}

// SerializeWriter wraps w for use by concurrent launches. Files are returned
// unchanged so children inherit the descriptor directly.
func SerializeWriter(w io.Writer) io.Writer {
	switch w.(type) {
	case nil, *os.File, *LockedWriter:
		return w
	}
	return &LockedWriter{w: w}
}

// SerializeReader is the input counterpart of SerializeWriter.
func SerializeReader(r io.Reader) io.Reader {
	switch r.(type) {
	case nil, *os.File, *LockedReader:
		return r
	}
	return &LockedReader{r: r}
}
