package core

import (
	"context"
	"errors"

	"flowcore/pkg/domain"
)

// Session is the write surface of one transactional edit. All mutating
// calls delegate to the store while the session tracks the last
// content-validation failure; SetBulk is only reachable here.
type Session struct {
	store *Store
}

// RunInEditSession executes fn within a snapshot-guarded edit scope.
// The document is deep-copied up front; if fn returns an error, or a
// content-validation failure is still pending when fn returns, the document
// is restored from the snapshot. domain.ErrCanceled rolls back and is
// absorbed rather than propagated. Sessions are non-reentrant.
func (s *Store) RunInEditSession(ctx context.Context, fn func(tx *Session) error) error {
	if s.inSession {
		return domain.ErrSessionActive
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.doc.Copy()
	s.inSession = true
	s.pending = nil

	err := fn(&Session{store: s})

	pending := s.pending
	s.inSession = false
	s.pending = nil

	if err == nil && pending == nil {
		return nil
	}
	s.doc = snapshot
	if errors.Is(err, domain.ErrCanceled) {
		return nil
	}
	if err != nil {
		return err
	}
	return pending
}

// GetValue reads a leaf value. See Store.GetValue.
func (tx *Session) GetValue(path string) (string, error) { return tx.store.GetValue(path) }

// SetValue edits a leaf value. A content-validation failure marks the
// session for rollback unless a later successful edit clears it.
func (tx *Session) SetValue(path, value string) error { return tx.store.SetValue(path, value) }

// GetAttribute reads an attribute. See Store.GetAttribute.
func (tx *Session) GetAttribute(path, name string) (string, error) {
	return tx.store.GetAttribute(path, name)
}

// SetAttribute edits an attribute. See Store.SetAttribute.
func (tx *Session) SetAttribute(path, name, value string) error {
	return tx.store.SetAttribute(path, name, value)
}

// GetBulk serializes a subtree into its nested-mapping form.
func (tx *Session) GetBulk(path string) (any, error) { return tx.store.GetBulk(path) }

// SetBulk clears the matched node and rebuilds it from the mapping.
// Rebuilding with an invalid shape is a hard error; the surrounding session
// rolls the document back.
func (tx *Session) SetBulk(path string, value domain.Bulk) error {
	return tx.store.setBulk(path, value)
}

// AddMaterial adds a material from the property database.
func (tx *Session) AddMaterial(name string) (int, error) { return tx.store.AddMaterial(name) }

// RemoveMaterial removes a material unless referenced or last.
func (tx *Session) RemoveMaterial(name string) error { return tx.store.RemoveMaterial(name) }

// AddRegion adds a region with the default material and "All" cell zone.
func (tx *Session) AddRegion(name string) error { return tx.store.AddRegion(name) }

// RemoveRegion removes a region unless a monitor references it.
func (tx *Session) RemoveRegion(name string) error { return tx.store.RemoveRegion(name) }

// AddCellZone adds a cell zone to a region.
func (tx *Session) AddCellZone(region, name string) (int, error) {
	return tx.store.AddCellZone(region, name)
}

// RemoveCellZone removes a cell zone; the default "All" zone stays.
func (tx *Session) RemoveCellZone(region, name string) error {
	return tx.store.RemoveCellZone(region, name)
}

// AddBoundaryCondition adds a boundary condition to a region.
func (tx *Session) AddBoundaryCondition(region, name, geometricalType string) (int, error) {
	return tx.store.AddBoundaryCondition(region, name, geometricalType)
}

// RemoveBoundaryCondition removes a boundary condition from a region.
func (tx *Session) RemoveBoundaryCondition(region, name string) error {
	return tx.store.RemoveBoundaryCondition(region, name)
}

// AddMonitor adds a monitor of the given kind under a derived default name.
func (tx *Session) AddMonitor(kind domain.MonitorKind) (string, error) {
	return tx.store.AddMonitor(kind)
}

// RemoveMonitor removes a monitor by name.
func (tx *Session) RemoveMonitor(kind domain.MonitorKind, name string) error {
	return tx.store.RemoveMonitor(kind, name)
}
