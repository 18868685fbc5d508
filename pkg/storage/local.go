package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fusionfit/storefront/config"
)

// localDisk stores objects on the local filesystem under a root directory.
// Keys map to file paths; URLs are served from STORAGE_URL.
type localDisk struct {
	root    string
	baseURL string
}

func newLocalDisk() *localDisk {
	return &localDisk{
		root:    config.StorageLocalRoot(),
		baseURL: strings.TrimRight(config.StorageURL(), "/"),
	}
}

// fullPath resolves key inside the root and rejects traversal outside it.
func (d *localDisk) fullPath(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	full := filepath.Join(d.root, clean)
	if !strings.HasPrefix(full, filepath.Clean(d.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage/local: key %q escapes root", key)
	}
	return full, nil
}

func (d *localDisk) Put(_ context.Context, key string, content []byte) error {
	full, err := d.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	return nil
}

func (d *localDisk) Get(_ context.Context, key string) ([]byte, error) {
	full, err := d.fullPath(key)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("storage/local: read %s: %w", key, err)
	}
	return content, nil
}

func (d *localDisk) Exists(_ context.Context, key string) bool {
	full, err := d.fullPath(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (d *localDisk) Delete(_ context.Context, key string) error {
	full, err := d.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", key, err)
	}
	return nil
}

func (d *localDisk) URL(key string) string {
	return d.baseURL + "/" + strings.TrimLeft(key, "/")
}
