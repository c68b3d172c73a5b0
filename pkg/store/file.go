package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MaxBackups is how many timestamped copies FileKV keeps per key.
var MaxBackups = 5

// FileKV stores each key as dir/<key>.json. Writes go to a temp file and are
// renamed into place; the previous version is kept as a timestamped backup.
type FileKV struct {
	dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileKV) Get(key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyNotFound
	}
	return data, err
}

func (f *FileKV) Set(key string, value []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if len(value) == 0 {
		return fmt.Errorf("validation failed: refusing to write empty value for %q", key)
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing value for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0600); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		f.pruneBackups(path)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, value, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (f *FileKV) Close() error { return nil }

// Backups lists the backup files for key, oldest first.
func (f *FileKV) Backups(key string) ([]string, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(path + ".*.bak")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// RestoreLastBackup replaces key with its most recent backup.
func (f *FileKV) RestoreLastBackup(key string) error {
	matches, err := f.Backups(key)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	data, err := os.ReadFile(matches[len(matches)-1])
	if err != nil {
		return err
	}
	path, _ := f.path(key)
	return os.WriteFile(path, data, 0600)
}

func (f *FileKV) pruneBackups(path string) {
	matches, err := filepath.Glob(path + ".*.bak")
	if err != nil || len(matches) <= MaxBackups {
		return
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-MaxBackups] {
		_ = os.Remove(old)
	}
}
