package compilation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/crypto"
	"github.com/crytic/stylus-replay/logging"
	"github.com/crytic/stylus-replay/logging/colors"
	"github.com/pkg/errors"
)

// ArtifactHashCacheFileName is the name of the file, inside the artifact directory, that remembers the last replayed
// program.
const ArtifactHashCacheFileName = ".stylus-replay-artifact-hash"

// ArtifactHashCache records the hash of the last program that was replayed.
type ArtifactHashCache struct {
	// Hash is the keccak256 hash of the wasm program.
	Hash common.Hash `json:"hash"`
	// Timestamp is when the program was last replayed.
	Timestamp time.Time `json:"timestamp"`
}

// FindArtifact returns the single regular file in dir with extension ext.
func FindArtifact(dir string, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Errorf("failed to open %s: %v", dir, err)
	}

	var found string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		if found != "" {
			return "", errors.Errorf("more than one %s found: %s and %s", ext, filepath.Base(found), entry.Name())
		}
		found = filepath.Join(dir, entry.Name())
	}
	if found == "" {
		return "", errors.Errorf("failed to find %s in %s", ext, dir)
	}
	return found, nil
}

// ComputeArtifactHash returns the keccak256 hash of a wasm program, the same hash its deployed code would carry.
func ComputeArtifactHash(wasm []byte) common.Hash {
	return crypto.Keccak256Hash(wasm)
}

// LoadArtifactHashCache loads the cache from directory. Returns nil if it does not exist or cannot be parsed.
func LoadArtifactHashCache(directory string) *ArtifactHashCache {
	data, err := os.ReadFile(filepath.Join(directory, ArtifactHashCacheFileName))
	if err != nil {
		return nil
	}

	var cache ArtifactHashCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil
	}
	return &cache
}

// SaveArtifactHashCache writes the cache to directory, creating it if needed.
func SaveArtifactHashCache(directory string, cache *ArtifactHashCache) error {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(filepath.Join(directory, ArtifactHashCacheFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

/*
NotifyArtifactHashStatus tells the user whether wasm is the same program that was replayed last time from
cacheDirectory, then records it. Rebuilding after an edit that did not change the program is a common source of
confusion when a mismatch persists.
*/
func NotifyArtifactHashStatus(wasm []byte, cacheDirectory string, logger *logging.Logger) common.Hash {
	currentHash := ComputeArtifactHash(wasm)
	cachedHash := LoadArtifactHashCache(cacheDirectory)

	if cachedHash == nil || cachedHash.Hash != currentHash {
		logger.Info(
			colors.Bold, "artifact: ", colors.Reset,
			"replaying a ", colors.GreenBold, "new", colors.Reset, " program ", currentHash.Hex(),
		)
	} else {
		logger.Warn(
			colors.Bold, "artifact: ", colors.Reset,
			"replaying the ", colors.YellowBold, "same", colors.Reset,
			" program as previously (last run: ", formatDuration(time.Since(cachedHash.Timestamp)), " ago)",
		)
	}

	newCache := &ArtifactHashCache{
		Hash:      currentHash,
		Timestamp: time.Now(),
	}
	if err := SaveArtifactHashCache(cacheDirectory, newCache); err != nil {
		logger.Warn("Failed to save artifact hash cache", err)
	}
	return currentHash
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
