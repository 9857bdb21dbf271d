package simulate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"liquiditySim/internal/model"
)

// JournalEntry records one minted position.
type JournalEntry struct {
	TokenID   string `json:"token_id"`
	TxHash    string `json:"tx_hash"`
	TickLower int32  `json:"tick_lower"`
	TickUpper int32  `json:"tick_upper"`
}

// Journal tracks which configured positions were already minted for a pool and owner.
type Journal struct {
	Pool      string                  `json:"pool"`
	Owner     string                  `json:"owner"`
	Minted    map[string]JournalEntry `json:"minted"`
	UpdatedAt string                  `json:"updated_at"`
}

func newJournal(pool, owner string) Journal {
	return Journal{Pool: pool, Owner: owner, Minted: make(map[string]JournalEntry)}
}

func journalKey(index int) string {
	return strconv.Itoa(index)
}

// Lookup returns the entry for a position index.
func (j Journal) Lookup(index int) (JournalEntry, bool) {
	entry, ok := j.Minted[journalKey(index)]
	return entry, ok
}

// Matches reports whether the entry was minted for rng.
func (e JournalEntry) Matches(rng model.TickRange) bool {
	return e.TickLower == rng.TickLower && e.TickUpper == rng.TickUpper
}

// Forget removes the entry for a position index.
func (j *Journal) Forget(index int) {
	delete(j.Minted, journalKey(index))
}

// JournalStore persists the mint journal to disk.
type JournalStore struct {
	path    string
	enabled bool
}

func NewJournalStore(path string, enabled bool) *JournalStore {
	return &JournalStore{path: path, enabled: enabled}
}

// Load reads the journal for pool and owner. A journal written for a different
// pool or owner is ignored.
func (s *JournalStore) Load(pool, owner string) (Journal, error) {
	empty := newJournal(pool, owner)
	if !s.enabled {
		return empty, nil
	}

	stat, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return empty, fmt.Errorf("stat journal: %w", err)
	}
	if stat.IsDir() {
		return empty, fmt.Errorf("journal path is a directory")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return empty, fmt.Errorf("read journal: %w", err)
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return empty, fmt.Errorf("parse journal: %w", err)
	}
	if !strings.EqualFold(j.Pool, pool) || !strings.EqualFold(j.Owner, owner) {
		return empty, nil
	}
	if j.Minted == nil {
		j.Minted = make(map[string]JournalEntry)
	}
	return j, nil
}

// Record adds an entry and writes the journal atomically.
func (s *JournalStore) Record(j *Journal, index int, entry JournalEntry) error {
	if j.Minted == nil {
		j.Minted = make(map[string]JournalEntry)
	}
	j.Minted[journalKey(index)] = entry
	return s.Save(*j)
}

func (s *JournalStore) Save(j Journal) error {
	if !s.enabled {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	j.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write journal tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename journal: %w", err)
	}

	return nil
}
