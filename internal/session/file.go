package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName = "starlab"
	fileName      = StorageKey + ".json"
	sqliteName    = "starlab.sqlite"
)

// configDir returns ~/.config/starlab
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName), nil
}

// DefaultFilePath returns the path to the session file
func DefaultFilePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// DefaultSQLitePath returns the path to the session database
func DefaultSQLitePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sqliteName), nil
}

// FilePersister stores the session as a JSON file readable only by the owner
type FilePersister struct {
	path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the file location
func (f *FilePersister) Path() string {
	return f.path
}

func (f *FilePersister) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session file: %w", err)
	}
	return data, true, nil
}

func (f *FilePersister) Save(ctx context.Context, data []byte) error {
	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write to a sibling and rename so a crash never leaves half a file
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
