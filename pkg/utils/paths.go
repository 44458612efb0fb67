package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDir = "dump"

// DefaultDBPath returns the system-specific location of the dump database.
func DefaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "dump.db"
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", appDir, "dump.db")
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appDir, "dump.db")
	default:
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, appDir, "dump.db")
		}
		return filepath.Join(homeDir, ".local", "share", appDir, "dump.db")
	}
}

// ResolveAndEnsureDBPath expands "~/", makes the path absolute and creates the
// parent directory. An empty path resolves to DefaultDBPath.
func ResolveAndEnsureDBPath(providedPath string) (string, error) {
	targetPath, err := ExpandPath(providedPath)
	if err != nil {
		return "", err
	}
	if targetPath == "" {
		targetPath = DefaultDBPath()
	}

	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", targetPath, err)
	}

	dbDir := filepath.Dir(absPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory '%s' for database: %w", dbDir, err)
	}
	return absPath, nil
}

// ExpandPath replaces a leading "~/" with the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory to expand path '%s': %w", path, err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}
