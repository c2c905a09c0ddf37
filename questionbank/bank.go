package questionbank

import (
	"log"
	"os"
	"sync"
	"time"
)

// Bank serves parsed questions from a flat file, re-reading it only when the
// file's modification time changes. A missing file behaves as an empty bank.
type Bank struct {
	path string

	mu      sync.RWMutex
	records []Record
	byID    map[string]Record
	modTime time.Time
	loaded  bool
}

func NewBank(path string) *Bank {
	return &Bank{path: path}
}

// Records returns the current question set in file order, reloading the file
// first if it changed on disk.
func (b *Bank) Records() []Record {
	b.refresh()
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Lookup finds a question by its stable id.
func (b *Bank) Lookup(id string) (Record, bool) {
	b.refresh()
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.byID[id]
	return rec, ok
}

func (b *Bank) refresh() {
	info, err := os.Stat(b.path)
	if err != nil {
		// Missing file is not an error: empty bank.
		b.mu.Lock()
		if b.loaded && len(b.records) > 0 {
			log.Printf("[BANK] question file %s gone, serving empty set", b.path)
		}
		b.records = nil
		b.byID = nil
		b.loaded = true
		b.modTime = time.Time{}
		b.mu.Unlock()
		return
	}

	b.mu.RLock()
	fresh := b.loaded && info.ModTime().Equal(b.modTime)
	b.mu.RUnlock()
	if fresh {
		return
	}

	f, err := os.Open(b.path)
	if err != nil {
		log.Printf("[BANK] cannot open question file %s: %v", b.path, err)
		return
	}
	defer f.Close()

	res := Parse(f)
	for _, d := range res.Diagnostics {
		log.Printf("[BANK] %s line %d: %s", b.path, d.Line, d.Message)
	}

	byID := make(map[string]Record, len(res.Records))
	for _, rec := range res.Records {
		byID[rec.ID] = rec
	}

	b.mu.Lock()
	b.records = res.Records
	b.byID = byID
	b.modTime = info.ModTime()
	b.loaded = true
	b.mu.Unlock()

	log.Printf("[BANK] loaded %d questions from %s (%d skipped)", len(res.Records), b.path, len(res.Diagnostics))
}
