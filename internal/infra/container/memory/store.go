// Package memory keeps case containers in process memory, mainly for tests
// and throwaway sessions.
package memory

import (
	"context"
	"fmt"
	"sync"

	"flowcore/internal/infra/container"
)

// Store is an in-memory case container.
type Store struct {
	mu    sync.RWMutex
	slots map[string]container.Slot
	path  string
}

// Open creates an empty in-memory container labelled with path.
func Open(path string) *Store {
	return &Store{slots: make(map[string]container.Slot), path: path}
}

func (s *Store) ReadSlot(_ context.Context, name string) (container.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[name]
	if !ok {
		return container.Slot{}, fmt.Errorf("%w: %q", container.ErrSlotNotFound, name)
	}
	out := slot
	out.Payload = append([]byte(nil), slot.Payload...)
	return out, nil
}

func (s *Store) WriteSlot(_ context.Context, slot container.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.slots[slot.Name]; ok && existing.ContentType != slot.ContentType {
		return fmt.Errorf("%w: slot %q holds %q", container.ErrContentType, slot.Name, existing.ContentType)
	}
	stored := slot
	stored.Payload = append([]byte(nil), slot.Payload...)
	s.slots[slot.Name] = stored
	return nil
}

func (s *Store) Driver() container.Driver { return container.DriverMemory }

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return nil }
