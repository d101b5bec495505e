package transcript

import (
	"strings"
	"sync"

	"github.com/voxprep/backend/internal/models"
)

// Transcript is an append-only, ordered collection of finalized utterances.
// Safe for concurrent append and read; entries are never mutated after append.
type Transcript struct {
	mu      sync.RWMutex
	entries []models.TranscriptEntry
}

func New() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(role models.Role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, models.TranscriptEntry{Role: role, Content: content})
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Entries returns a copy of the accumulated entries in arrival order.
func (t *Transcript) Entries() []models.TranscriptEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Format renders the conversation one "role: content" line per entry,
// in the order shown to the scorer.
func Format(entries []models.TranscriptEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(e.Role))
		b.WriteString(": ")
		b.WriteString(e.Content)
	}
	return b.String()
}
