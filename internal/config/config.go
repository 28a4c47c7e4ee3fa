// Package config loads the optional YAML watchlist file that seeds the
// rescore scheduler at startup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"solana-token-sentinel/internal/domain"
)

// WatchEntry is one token to track.
type WatchEntry struct {
	Mint  string `yaml:"mint"`
	Label string `yaml:"label"`
}

// Watchlist is the YAML watchlist file.
type Watchlist struct {
	Tokens []WatchEntry `yaml:"tokens"`
}

// LoadWatchlist reads and validates a YAML watchlist file. Entries with
// an invalid mint address are rejected, not skipped; a bad file should
// fail loudly at startup.
func LoadWatchlist(filename string) (*Watchlist, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read watchlist file: %w", err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parse watchlist file: %w", err)
	}

	seen := make(map[string]struct{}, len(wl.Tokens))
	for i, entry := range wl.Tokens {
		if err := domain.ValidateAddress(entry.Mint); err != nil {
			return nil, fmt.Errorf("watchlist entry %d (%q): %w", i, entry.Mint, err)
		}
		if _, dup := seen[entry.Mint]; dup {
			return nil, fmt.Errorf("watchlist entry %d: duplicate mint %s", i, entry.Mint)
		}
		seen[entry.Mint] = struct{}{}
	}

	return &wl, nil
}

// SaveWatchlist writes a watchlist back to disk.
func SaveWatchlist(filename string, wl *Watchlist) error {
	data, err := yaml.Marshal(wl)
	if err != nil {
		return fmt.Errorf("serialize watchlist: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write watchlist file: %w", err)
	}
	return nil
}
