package journal

import (
	"path/filepath"
	"testing"
)

// createTestJournal opens a fresh journal in a temp dir with fixed IDs.
func createTestJournal(t *testing.T, ids ...string) *Journal {
	t.Helper()
	if len(ids) == 0 {
		ids = []string{"battle-1", "battle-2", "battle-3"}
	}
	path := filepath.Join(t.TempDir(), "test.db")
	j, err := Open(path, WithIDGenerator(NewFixedGenerator(ids...)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

type tally struct {
	Round int    `json:"round"`
	Note  string `json:"note"`
}
