package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// fileVersion is written into every store file.
const fileVersion = 1

// fileDocument is the on-disk layout of a File store.
type fileDocument struct {
	Version int               `yaml:"version"`
	Entries map[string]string `yaml:"entries"`
}

// File is a Store backed by a YAML file. The whole file is loaded on open and
// rewritten through a temporary file and rename on every change.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// OpenFile opens the store at path. A missing file is an empty store; it is
// created on the first write.
//
// PARAMETERS:
//   - path: The path to the YAML store file.
//
// RETURNS:
//   - The opened store.
//   - An error if the file exists but cannot be read or parsed.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string]string)}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse store file %s: %w", path, err)
	}
	if doc.Version > fileVersion {
		return nil, fmt.Errorf("store file %s has unsupported version %d", path, doc.Version)
	}
	for key, value := range doc.Entries {
		f.data[key] = value
	}

	return f, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous, existed := f.data[key]
	f.data[key] = value
	if err := f.save(); err != nil {
		if existed {
			f.data[key] = previous
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous, existed := f.data[key]
	if !existed {
		return nil
	}
	delete(f.data, key)
	if err := f.save(); err != nil {
		f.data[key] = previous
		return err
	}
	return nil
}

func (f *File) ListKeys(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return keysWithPrefix(f.data, prefix), nil
}

// save writes the store to disk. The caller holds f.mu.
func (f *File) save() error {
	content, err := yaml.Marshal(fileDocument{Version: fileVersion, Entries: f.data})
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary store file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}
