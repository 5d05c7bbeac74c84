package core

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// childText returns the trimmed text of the first child with the given tag,
// or the empty string when the child is absent.
func childText(parent *etree.Element, tag string) string {
	if child := parent.SelectElement(tag); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}

// childWithName scans children with the given tag for one whose name child
// matches exactly. Navigation is programmatic so names never have to be
// escaped into a path expression.
func childWithName(parent *etree.Element, tag, name string) *etree.Element {
	for _, child := range parent.SelectElements(tag) {
		if childText(child, "name") == name {
			return child
		}
	}
	return nil
}

// usedAttrIDs collects the numeric values of an id attribute across children
// with the given tag.
func usedAttrIDs(parent *etree.Element, tag, attr string) map[int]bool {
	used := make(map[int]bool)
	for _, child := range parent.SelectElements(tag) {
		if id, err := strconv.Atoi(child.SelectAttrValue(attr, "")); err == nil {
			used[id] = true
		}
	}
	return used
}

// smallestFreeID returns the smallest id in [1, max] not present in used,
// reusing ids freed by removals. The second result is false when the scope
// is full.
func smallestFreeID(used map[int]bool, max int) (int, bool) {
	for id := 1; id <= max; id++ {
		if !used[id] {
			return id, true
		}
	}
	return 0, false
}
