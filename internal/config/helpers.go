package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHomeDir returns the default text2cypher home directory.
// It uses ~/.text2cypher or falls back to a temporary directory if user home cannot be determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".text2cypher")
	}
	return filepath.Join(userHome, ".text2cypher")
}

// DefaultConfigPath returns the default config file path for a given home directory
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}

// normalizeKey matches viper, which lowercases map keys.
func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// expandHome resolves a leading "~" against the user's home directory and
// cleans the result. Empty paths stay empty.
func expandHome(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return filepath.Clean(path), nil
}

// expandPaths applies expandHome to every file path in cfg.
func expandPaths(cfg *Config) error {
	for _, p := range []*string{
		&cfg.Logging.Output,
		&cfg.Fewshot.SQLitePath,
		&cfg.Fewshot.KeyedFile,
		&cfg.Prompts.Directory,
	} {
		expanded, err := expandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}
