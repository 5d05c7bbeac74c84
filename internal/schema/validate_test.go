package schema

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
)

func parseDoc(t *testing.T, xml string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func TestTagPathExcludesRoot(t *testing.T) {
	doc := parseDoc(t, `<case><general><gravity><direction>0 0 -9.81</direction></gravity></general></case>`)

	if got := TagPath(doc.Root()); got != "" {
		t.Fatalf("root path should be empty, got %q", got)
	}
	direction := doc.FindElement(".//direction")
	if got := TagPath(direction); got != "general/gravity/direction" {
		t.Fatalf("unexpected tag path %q", got)
	}
}

func TestValidateDocument(t *testing.T) {
	c := loadTestCatalog(t, `
paths:
  general/pressure: {kind: float, min: 0}
  general/mode: {kind: enum, values: [fast, slow]}
`)

	valid := parseDoc(t, `<case><general><pressure>101325</pressure><mode>fast</mode></general></case>`)
	if err := c.ValidateDocument(valid); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	badText := parseDoc(t, `<case><general><pressure>-1</pressure><mode>fast</mode></general></case>`)
	if err := c.ValidateDocument(badText); err == nil {
		t.Fatalf("out-of-range leaf accepted")
	}

	leafWithChildren := parseDoc(t, `<case><general><pressure><inner>1</inner></pressure><mode>fast</mode></general></case>`)
	err := c.ValidateDocument(leafWithChildren)
	if err == nil || !strings.Contains(err.Error(), "child elements") {
		t.Fatalf("leaf with children accepted: %v", err)
	}

	// Undeclared elements are structural and pass untyped.
	extra := parseDoc(t, `<case><notes>anything goes</notes><general><pressure>1</pressure><mode>slow</mode></general></case>`)
	if err := c.ValidateDocument(extra); err != nil {
		t.Fatalf("undeclared element rejected: %v", err)
	}
}
