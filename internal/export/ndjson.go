package export

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"example.com/catread/internal/catman"
)

// NDJSONWriter streams newline-delimited JSON objects to the underlying
// writer.
type NDJSONWriter struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{writer: w}
}

// WriteWarning marshals the warning and writes it as a single NDJSON record.
func (w *NDJSONWriter) WriteWarning(warn catman.Warning) error {
	return w.WriteObject(warn)
}

// WriteObject marshals the provided value to JSON and writes it followed by
// a newline.
func (w *NDJSONWriter) WriteObject(v any) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.writer.Write(data); err != nil {
		return err
	}
	_, err = w.writer.Write([]byte("\n"))
	return err
}

// SaveWarningsNDJSON writes the decode warnings to path, one JSON object per
// line.
func SaveWarningsNDJSON(path string, warns []catman.Warning) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := NewNDJSONWriter(f)
	for _, warn := range warns {
		if err := w.WriteWarning(warn); err != nil {
			return err
		}
	}
	return f.Close()
}
