package domain

// Bulk is the generic nested-mapping representation of a subtree used at the
// bulk codec boundary. Keys starting with "@" hold attribute values, the "$"
// key holds the node's own text when the node also carries attributes or
// children, and every other key holds either a nested Bulk, a scalar, or a
// list of those for repeated tags (document order preserved).
//
// Bulk is only a wire shape: the store never represents its document this
// way internally.
type Bulk = map[string]any

// Bulk key conventions.
const (
	// BulkAttrPrefix marks a key as an attribute name.
	BulkAttrPrefix = "@"
	// BulkTextKey holds the node's own text.
	BulkTextKey = "$"
)
