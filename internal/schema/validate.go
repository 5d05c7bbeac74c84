package schema

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// TagPath returns the slash-joined tag path of an element relative to the
// document root. The root tag itself is not part of the path; catalog keys
// start at the root's children.
func TagPath(e *etree.Element) string {
	var parts []string
	for cur := e; cur != nil; cur = cur.Parent() {
		p := cur.Parent()
		if p == nil || p.Parent() == nil {
			break
		}
		parts = append(parts, cur.Tag)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// ValidateDocument re-checks the whole document against the catalog: every
// element whose tag path is declared a leaf must carry valid text and no
// child elements. Run after each successful mutation as the global
// consistency check; a failure here means a template or codec bug, not bad
// user input.
func (c *Catalog) ValidateDocument(doc *etree.Document) error {
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("document has no root")
	}
	return c.validateElement(root)
}

func (c *Catalog) validateElement(e *etree.Element) error {
	leaf, ok := c.Lookup(TagPath(e))
	if ok {
		if len(e.ChildElements()) > 0 {
			return fmt.Errorf("leaf %s has child elements", TagPath(e))
		}
		if _, err := c.CheckValue(leaf, TagPath(e), e.Text()); err != nil {
			return fmt.Errorf("document invalid at %s: %w", TagPath(e), err)
		}
		return nil
	}
	for _, child := range e.ChildElements() {
		if err := c.validateElement(child); err != nil {
			return err
		}
	}
	return nil
}
