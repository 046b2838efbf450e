// SPDX-License-Identifier: MPL-2.0

package unitfs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// CachePathEnv overrides the default git checkout cache directory.
	CachePathEnv = "DOTIMPORT_CACHE_PATH"

	// DefaultCacheDirName is the cache subdirectory within ~/.dotimport.
	DefaultCacheDirName = "cache"
)

// DefaultCacheDir returns the default git checkout cache directory.
// It checks DOTIMPORT_CACHE_PATH first, then falls back to ~/.dotimport/cache.
func DefaultCacheDir() (string, error) {
	return DefaultCacheDirWith(os.Getenv)
}

// DefaultCacheDirWith is DefaultCacheDir with an injected getenv, so tests
// need not mutate process-global environment state.
func DefaultCacheDirWith(getenv func(string) string) (string, error) {
	if envPath := getenv(CachePathEnv); envPath != "" {
		return envPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".dotimport", DefaultCacheDirName), nil
}
