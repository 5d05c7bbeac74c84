// Package core implements the in-memory, schema-typed case configuration
// store: the document tree, the typed value accessor, bulk subtree codec,
// entity registries, and the transactional edit session that wraps them.
package core

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"flowcore/internal/core/assets"
	"flowcore/internal/schema"
	"flowcore/pkg/domain"
)

// DefaultMaterial is seeded into every fresh case so the at-least-one-material
// invariant holds from construction.
const DefaultMaterial = "air"

// Store holds the case configuration document and enforces the schema
// catalog on every mutation. It is single-writer: construction and all
// mutating calls must be externally serialized; an edit session is
// non-reentrant.
type Store struct {
	doc     *etree.Document
	catalog *schema.Catalog
	mdb     *materialDB

	modified  bool
	inSession bool
	pending   error // last content-validation outcome within the session
}

// NewStore builds a store from the bundled case template, schema catalog,
// and material property database, and seeds the default material.
func NewStore() (*Store, error) {
	catalog, err := schema.Load(assets.SchemaCatalog)
	if err != nil {
		return nil, err
	}
	mdb, err := loadMaterialDB(assets.MaterialDatabase)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(assets.CaseTemplate); err != nil {
		return nil, fmt.Errorf("parse case template: %w", err)
	}
	if err := catalog.ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("case template: %w", err)
	}

	s := &Store{doc: doc, catalog: catalog, mdb: mdb}
	if _, err := s.AddMaterial(DefaultMaterial); err != nil {
		return nil, fmt.Errorf("seed default material: %w", err)
	}
	s.modified = false
	return s, nil
}

// resolve compiles and evaluates a path query, requiring exactly one match.
func (s *Store) resolve(path string) (*etree.Element, error) {
	compiled, err := etree.CompilePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrPathResolution, path, err)
	}
	matches := s.doc.FindElementsPath(compiled)
	if len(matches) != 1 {
		return nil, fmt.Errorf("%w: %s matched %d nodes", domain.ErrPathResolution, path, len(matches))
	}
	return matches[0], nil
}

// GetAttribute returns the named attribute of the single node matched by
// path.
func (s *Store) GetAttribute(path, name string) (string, error) {
	e, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	attr := e.SelectAttr(name)
	if attr == nil {
		return "", fmt.Errorf("%w: %s@%s", domain.ErrAttributeUndeclared, path, name)
	}
	return attr.Value, nil
}

// SetAttribute replaces the named attribute of the single node matched by
// path. The attribute must already be declared on the node.
func (s *Store) SetAttribute(path, name, value string) error {
	e, err := s.resolve(path)
	if err != nil {
		return err
	}
	if e.SelectAttr(name) == nil {
		return fmt.Errorf("%w: %s@%s", domain.ErrAttributeUndeclared, path, name)
	}
	e.CreateAttr(name, value)
	s.markMutated()
	return s.revalidate()
}

// GetValue returns the text of the single matched leaf node.
func (s *Store) GetValue(path string) (string, error) {
	e, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if _, ok := s.catalog.Lookup(schema.TagPath(e)); !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrLeafExpected, path)
	}
	return e.Text(), nil
}

// SetValue validates value against the leaf's schema type and stores the
// normalized text. Content failures (parse, bounds) come back as
// *domain.ValidationError and leave the tree unchanged; structural misuse
// (bad path, structural node, enum violation) is a hard error.
func (s *Store) SetValue(path, value string) error {
	e, err := s.resolve(path)
	if err != nil {
		return err
	}
	leaf, ok := s.catalog.Lookup(schema.TagPath(e))
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrLeafExpected, path)
	}
	normalized, err := s.catalog.CheckValue(leaf, path, value)
	if err != nil {
		s.recordOutcome(err)
		return err
	}
	e.SetText(normalized)
	s.markMutated()
	return s.revalidate()
}

// Modified reports whether the document changed since the last save or load.
func (s *Store) Modified() bool { return s.modified }

// SerializeDocument renders the whole document, including its XML
// declaration, as UTF-8 text.
func (s *Store) SerializeDocument() ([]byte, error) {
	return s.doc.WriteToBytes()
}

// ReplaceDocument re-parses payload through the schema-validating parser and
// replaces the tree wholesale. It refuses to run inside an edit session.
func (s *Store) ReplaceDocument(payload []byte) error {
	if s.inSession {
		return domain.ErrSessionActive
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(payload); err != nil {
		return fmt.Errorf("parse case document: %w", err)
	}
	if err := s.catalog.ValidateDocument(doc); err != nil {
		return fmt.Errorf("case document: %w", err)
	}
	s.doc = doc
	s.modified = false
	return nil
}

// ClearModified resets the dirty flag after a successful save.
func (s *Store) ClearModified() { s.modified = false }

// markMutated flags the document dirty and, inside a session, clears the
// pending error: a corrective successful edit leaves the session clean.
func (s *Store) markMutated() {
	s.modified = true
	if s.inSession {
		s.pending = nil
	}
}

// recordOutcome retains a content-validation failure so the surrounding
// session rolls back unless a later call corrects it.
func (s *Store) recordOutcome(err error) {
	if !s.inSession {
		return
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		s.pending = err
	}
}

// revalidate runs the whole-document consistency check after a successful
// mutation. A failure here indicates a template or codec bug.
func (s *Store) revalidate() error {
	if err := s.catalog.ValidateDocument(s.doc); err != nil {
		return fmt.Errorf("document validation after mutation: %w", err)
	}
	return nil
}
