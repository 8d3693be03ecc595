package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// metaSuffix names the sidecar file holding object metadata.
const metaSuffix = ".meta.json"

// FileStore persists artifacts onto the local filesystem. It is intended for
// development and test environments where an object storage service is not
// available.
type FileStore struct {
	basePath string
}

// ObjectInfo is the sidecar content written next to every object.
type ObjectInfo struct {
	Key         string            `json:"key"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Put writes data at key, replacing any previous object, and records the
// content type and metadata in a sidecar file.
func (s *FileStore) Put(ctx context.Context, key string, data []byte, contentType string, meta map[string]string) error {
	if s == nil {
		return errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := writeFileAtomic(fullPath, data); err != nil {
		return fmt.Errorf("storage: write file: %w", err)
	}
	info, err := json.MarshalIndent(ObjectInfo{
		Key:         cleanKey,
		ContentType: contentType,
		Size:        int64(len(data)),
		Metadata:    meta,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode metadata: %w", err)
	}
	if err := writeFileAtomic(fullPath+metaSuffix, info); err != nil {
		return fmt.Errorf("storage: write metadata: %w", err)
	}
	return nil
}

// Get reads the object and its sidecar back.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, *ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, nil, err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: read file: %w", err)
	}
	var info ObjectInfo
	raw, err := os.ReadFile(fullPath + metaSuffix)
	if err == nil {
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, nil, fmt.Errorf("storage: decode metadata: %w", err)
		}
	}
	return data, &info, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

var _ ObjectWriter = (*FileStore)(nil)
