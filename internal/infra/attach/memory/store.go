// Package memory keeps attachments in process memory for tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"flowcore/internal/infra/attach"
)

type entry struct {
	payload []byte
	info    attach.Info
}

// Store is an in-memory attachment backend.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

func (s *Store) Put(_ context.Context, key string, r io.Reader, opts attach.PutOptions) (attach.Info, error) {
	if key == "" {
		return attach.Info{}, fmt.Errorf("invalid attachment key %q", key)
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return attach.Info{}, fmt.Errorf("read attachment payload: %w", err)
	}
	info := attach.Info{
		Key:          key,
		Size:         int64(len(payload)),
		ContentType:  opts.ContentType,
		Metadata:     opts.Metadata,
		LastModified: time.Now().UTC(),
	}
	s.mu.Lock()
	s.entries[key] = entry{payload: payload, info: info}
	s.mu.Unlock()
	return info, nil
}

func (s *Store) Get(_ context.Context, key string) (attach.Info, io.ReadCloser, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return attach.Info{}, nil, fmt.Errorf("%w: %q", attach.ErrNotFound, key)
	}
	return e.info, io.NopCloser(bytes.NewReader(e.payload)), nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return fmt.Errorf("%w: %q", attach.ErrNotFound, key)
	}
	delete(s.entries, key)
	return nil
}

func (s *Store) List(_ context.Context, prefix string) ([]attach.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var infos []attach.Info
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, e.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) Driver() attach.Driver { return attach.DriverMemory }
