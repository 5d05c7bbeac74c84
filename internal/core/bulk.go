package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"flowcore/pkg/domain"
)

// GetBulk serializes the single matched node into its nested-mapping form:
// attributes under "@" keys, repeated child tags as ordered lists, the
// node's own text under "$" when attributes or children are also present,
// and a bare string when the node is text-only.
func (s *Store) GetBulk(path string) (any, error) {
	e, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return encodeBulk(e), nil
}

func encodeBulk(e *etree.Element) any {
	data := domain.Bulk{}
	for _, attr := range e.Attr {
		data[domain.BulkAttrPrefix+attr.Key] = attr.Value
	}
	for _, child := range e.ChildElements() {
		encoded := encodeBulk(child)
		if existing, ok := data[child.Tag]; ok {
			if list, ok := existing.([]any); ok {
				data[child.Tag] = append(list, encoded)
			} else {
				data[child.Tag] = []any{existing, encoded}
			}
		} else {
			data[child.Tag] = encoded
		}
	}
	if text := strings.TrimSpace(e.Text()); text != "" {
		if len(data) == 0 {
			return text
		}
		data[domain.BulkTextKey] = text
	}
	return data
}

// setBulk clears the matched node and rebuilds it from value. Only
// reachable from within an edit session.
func (s *Store) setBulk(path string, value domain.Bulk) error {
	e, err := s.resolve(path)
	if err != nil {
		return err
	}
	e.SetText("")
	for _, attr := range append([]etree.Attr(nil), e.Attr...) {
		e.RemoveAttr(attr.Key)
	}
	for _, child := range e.ChildElements() {
		e.RemoveChild(child)
	}
	if err := decodeBulk(e, value); err != nil {
		return err
	}
	s.markMutated()
	return s.revalidate()
}

// decodeBulk rebuilds element content from a bulk mapping. Attribute keys
// and the text key apply to the element itself; remaining keys create child
// elements in a deterministic order, with lists expanding to repeated tags
// in list order.
func decodeBulk(e *etree.Element, data domain.Bulk) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := data[k]
		switch {
		case strings.HasPrefix(k, domain.BulkAttrPrefix):
			text, ok := scalarText(v)
			if !ok {
				return fmt.Errorf("%w: attribute %s holds %T", domain.ErrBulkShape, k, v)
			}
			e.CreateAttr(strings.TrimPrefix(k, domain.BulkAttrPrefix), text)

		case k == domain.BulkTextKey:
			text, ok := scalarText(v)
			if !ok {
				return fmt.Errorf("%w: text key holds %T", domain.ErrBulkShape, v)
			}
			e.SetText(text)

		default:
			if err := decodeBulkChild(e, k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeBulkChild(parent *etree.Element, tag string, v any) error {
	switch value := v.(type) {
	case domain.Bulk:
		return decodeBulk(parent.CreateElement(tag), value)
	case []any:
		if len(value) == 0 {
			parent.CreateElement(tag)
			return nil
		}
		for _, item := range value {
			if nested, ok := item.(domain.Bulk); ok {
				if err := decodeBulk(parent.CreateElement(tag), nested); err != nil {
					return err
				}
				continue
			}
			text, ok := scalarText(item)
			if !ok {
				return fmt.Errorf("%w: list under %s holds %T", domain.ErrBulkShape, tag, item)
			}
			parent.CreateElement(tag).SetText(text)
		}
		return nil
	default:
		text, ok := scalarText(v)
		if !ok {
			return fmt.Errorf("%w: %s holds %T", domain.ErrBulkShape, tag, v)
		}
		parent.CreateElement(tag).SetText(text)
		return nil
	}
}

// scalarText renders the primitive scalars the codec accepts.
func scalarText(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case bool:
		return strconv.FormatBool(value), true
	case int:
		return strconv.Itoa(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64), true
	default:
		return "", false
	}
}
