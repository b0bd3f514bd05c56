package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
)

// TestLogBuffer captures handler output for tests. slog handlers may be
// driven from multiple goroutines, so writes are serialized.
type TestLogBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// GetLogEntries decodes the captured output, one JSON object per record as
// the JSON handler emits them.
func (b *TestLogBuffer) GetLogEntries() ([]map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(b.String()))

	var entries []map[string]interface{}
	for dec.More() {
		var entry map[string]interface{}
		if err := dec.Decode(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
