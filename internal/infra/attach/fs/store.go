// Package fs keeps attachments as plain files under a root directory, with a
// JSON sidecar per attachment carrying its metadata.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"flowcore/internal/infra/attach"
)

const metaSuffix = ".meta"

// Store is a filesystem attachment backend.
type Store struct {
	root string
}

// New creates the root directory if needed and returns the store.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./attachdata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment root: %w", err)
	}
	return &Store{root: root}, nil
}

type sidecar struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// sanitizeKey maps an attachment key to a path under root and rejects keys
// that would escape it.
func (s *Store) sanitizeKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid attachment key %q", key)
	}
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid attachment key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *Store) Put(_ context.Context, key string, r io.Reader, opts attach.PutOptions) (attach.Info, error) {
	path, err := s.sanitizeKey(key)
	if err != nil {
		return attach.Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return attach.Info{}, fmt.Errorf("create attachment directory: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return attach.Info{}, fmt.Errorf("read attachment payload: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return attach.Info{}, fmt.Errorf("write attachment: %w", err)
	}
	meta, err := json.Marshal(sidecar{ContentType: opts.ContentType, Metadata: opts.Metadata})
	if err != nil {
		return attach.Info{}, err
	}
	if err := os.WriteFile(path+metaSuffix, meta, 0o644); err != nil {
		return attach.Info{}, fmt.Errorf("write attachment metadata: %w", err)
	}
	return s.stat(key, path)
}

func (s *Store) Get(_ context.Context, key string) (attach.Info, io.ReadCloser, error) {
	path, err := s.sanitizeKey(key)
	if err != nil {
		return attach.Info{}, nil, err
	}
	info, err := s.stat(key, path)
	if err != nil {
		return attach.Info{}, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return attach.Info{}, nil, fmt.Errorf("open attachment: %w", err)
	}
	return info, f, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	path, err := s.sanitizeKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", attach.ErrNotFound, key)
		}
		return fmt.Errorf("delete attachment: %w", err)
	}
	os.Remove(path + metaSuffix)
	return nil
}

func (s *Store) List(_ context.Context, prefix string) ([]attach.Info, error) {
	var infos []attach.Info
	err := filepath.Walk(s.root, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() || strings.HasSuffix(path, metaSuffix) {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := s.stat(key, path)
		if err != nil {
			return err
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) Driver() attach.Driver { return attach.DriverFilesystem }

func (s *Store) stat(key, path string) (attach.Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return attach.Info{}, fmt.Errorf("%w: %q", attach.ErrNotFound, key)
		}
		return attach.Info{}, fmt.Errorf("stat attachment: %w", err)
	}
	info := attach.Info{
		Key:          key,
		Size:         fi.Size(),
		LastModified: fi.ModTime().UTC(),
	}
	if raw, err := os.ReadFile(path + metaSuffix); err == nil {
		var sc sidecar
		if json.Unmarshal(raw, &sc) == nil {
			info.ContentType = sc.ContentType
			info.Metadata = sc.Metadata
		}
	}
	return info, nil
}
