package workers

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"trivia-game-system/utils"
)

// staleAfter is how long a staged import file may sit before it is assumed
// orphaned by a crashed request.
const staleAfter = 1 * time.Hour

// PollTempImports periodically removes staged import files that a crashed or
// abandoned upload left behind in the temp directory.
func PollTempImports(ctx context.Context, pollInterval time.Duration) {
	log.Println("Starting temp import cleanup...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Temp import cleanup stopped.")
			return
		case <-ticker.C:
			removed, err := reapStaleFiles(utils.TempImportDir, time.Now().Add(-staleAfter))
			if err != nil {
				log.Printf("[CLEANUP] sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("[CLEANUP] removed %d stale import file(s)", removed)
			}
		}
	}
}

func reapStaleFiles(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("[CLEANUP] failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}
