package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"garderobe/internal/config"
)

var errInvalidName = errors.New("invalid file name")

// cleanName normalizes a slash-separated name and rejects anything that
// would resolve outside the backend root. Request paths reach the backends
// unfiltered through the media route, so every operation validates here.
func cleanName(name string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(name, "/"))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errInvalidName
	}
	return cleaned, nil
}

// Backend stores uploaded files. Paths are slash-separated and relative to
// the backend root.
type Backend interface {
	Save(name string, r io.Reader) (string, error)
	Open(name string) (io.ReadCloser, error)
	Exists(name string) (bool, error)
	Delete(name string) error
	Size(name string) (int64, error)
	URL(name string) string
	ListDir(name string) (dirs []string, files []string, err error)
}

// New selects the backend from configuration. Anything but "sftp" falls back
// to local disk.
func New(cfg *config.Config) (Backend, error) {
	if cfg.StorageBackend == "sftp" {
		return NewSFTP(cfg)
	}
	return NewLocal(cfg.UploadsDir, cfg.MediaURL), nil
}

// Local stores files under a directory on the local filesystem.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) *Local {
	return &Local{root: root, baseURL: baseURL}
}

func (l *Local) fullPath(name string) (string, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(cleaned)), nil
}

// Save writes the file, creating parent directories as needed. An existing
// name gets a numeric suffix rather than being overwritten.
func (l *Local) Save(name string, r io.Reader) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	name = availableName(l, name)
	full, err := l.fullPath(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return name, nil
}

func (l *Local) Open(name string) (io.ReadCloser, error) {
	full, err := l.fullPath(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (l *Local) Exists(name string) (bool, error) {
	full, err := l.fullPath(name)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

// Delete removes the file. A missing file is not an error.
func (l *Local) Delete(name string) error {
	full, err := l.fullPath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Size returns the file size in bytes, 0 when the file cannot be read.
func (l *Local) Size(name string) (int64, error) {
	full, err := l.fullPath(name)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.Size(), nil
}

func (l *Local) URL(name string) string {
	return strings.TrimSuffix(l.baseURL, "/") + "/" + strings.TrimPrefix(name, "/")
}

func (l *Local) ListDir(name string) ([]string, []string, error) {
	full, err := l.fullPath(name)
	if err != nil {
		return nil, nil, err
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list directory: %w", err)
	}

	var dirs, files []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	return dirs, files, nil
}

// availableName appends _1, _2, ... before the extension until the name is
// free on the backend.
func availableName(b Backend, name string) string {
	exists, err := b.Exists(name)
	if err != nil || !exists {
		return name
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		exists, err := b.Exists(candidate)
		if err != nil || !exists {
			return candidate
		}
	}
}
