// Package docpath reads and writes values at dotted/bracketed addresses such as
// "experience[2].responsibilities" inside a decoded JSON document.
package docpath

import (
	"strconv"
	"strings"
)

// Segment is one step of a parsed path: an object key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Parse splits a path into segments. "a.b[0].c" and "a.b.0.c" are equivalent;
// purely numeric dotted segments are treated as indexes.
func Parse(path string) []Segment {
	var segs []Segment
	for _, part := range strings.Split(path, ".") {
		for part != "" {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				segs = append(segs, keyOrIndex(part))
				break
			}
			if open > 0 {
				segs = append(segs, keyOrIndex(part[:open]))
			}
			end := strings.IndexByte(part[open:], ']')
			if end < 0 {
				segs = append(segs, keyOrIndex(part[open+1:]))
				break
			}
			segs = append(segs, keyOrIndex(part[open+1:open+end]))
			part = part[open+end+1:]
		}
	}
	return segs
}

func keyOrIndex(s string) Segment {
	if n, err := strconv.Atoi(s); err == nil {
		return Segment{Index: n, IsIndex: true, Key: s}
	}
	return Segment{Key: s}
}

// Join builds a path from a base and extra parts, e.g. Join("experience", 2, "title").
func Join(base string, parts ...any) string {
	var b strings.Builder
	b.WriteString(base)
	for _, p := range parts {
		switch v := p.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(v) + "]")
		case string:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		}
	}
	return b.String()
}

// Get resolves path inside doc. It never mutates doc and never panics; ok is
// false when any segment along the way is missing or has the wrong shape.
func Get(doc any, path string) (value any, ok bool) {
	if path == "" {
		return doc, doc != nil
	}
	cur := doc
	for _, seg := range Parse(path) {
		switch node := cur.(type) {
		case map[string]any:
			v, found := node[seg.Key]
			if !found {
				return nil, false
			}
			cur = v
		case []any:
			if !seg.IsIndex || seg.Index < 0 || seg.Index >= len(node) {
				return nil, false
			}
			cur = node[seg.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Set writes value at path, mutating doc in place. Missing intermediates are
// created: a list when the following segment is an index, an object otherwise.
// Lists are grown with nil padding when the index is past the end.
//
// The caller must own doc. The root must be an object; writing through a
// scalar or indexing into an object with a number is a *PathError.
func Set(doc map[string]any, path string, value any) error {
	if doc == nil {
		return &PathError{Path: path, Message: "document is nil"}
	}
	segs := Parse(path)
	if len(segs) == 0 {
		return &PathError{Path: path, Message: "empty path"}
	}
	if segs[0].IsIndex {
		return &PathError{Path: path, Message: "root is an object and cannot be indexed"}
	}
	_, err := set(doc, segs, value, path)
	return err
}

// set writes into container and returns the (possibly reallocated) container
// so that a grown list can be stored back into its parent.
func set(container any, segs []Segment, value any, path string) (any, error) {
	seg := segs[0]
	last := len(segs) == 1

	child := func(existing any) (any, error) {
		if last {
			return value, nil
		}
		if existing == nil {
			existing = emptyFor(segs[1])
		}
		return set(existing, segs[1:], value, path)
	}

	switch node := container.(type) {
	case map[string]any:
		next, err := child(node[seg.Key])
		if err != nil {
			return nil, err
		}
		node[seg.Key] = next
		return node, nil
	case []any:
		if !seg.IsIndex {
			return nil, &PathError{Path: path, Message: "segment " + strconv.Quote(seg.Key) + " addresses a list by key"}
		}
		if seg.Index < 0 {
			return nil, &PathError{Path: path, Message: "negative index " + strconv.Itoa(seg.Index)}
		}
		for len(node) <= seg.Index {
			node = append(node, nil)
		}
		next, err := child(node[seg.Index])
		if err != nil {
			return nil, err
		}
		node[seg.Index] = next
		return node, nil
	default:
		return nil, &PathError{Path: path, Message: "cannot write through " + describe(container) + " at " + seg.String()}
	}
}

func emptyFor(next Segment) any {
	if next.IsIndex {
		return []any{}
	}
	return map[string]any{}
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case float64, int:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return "a scalar"
	}
}

// Delete removes the object key or list element addressed by path, mutating
// doc in place. Removing a list element shifts the following elements down.
// A path that does not resolve is a no-op.
func Delete(doc map[string]any, path string) error {
	if doc == nil {
		return &PathError{Path: path, Message: "document is nil"}
	}
	segs := Parse(path)
	if len(segs) == 0 {
		return &PathError{Path: path, Message: "empty path"}
	}
	if segs[0].IsIndex {
		return &PathError{Path: path, Message: "root is an object and cannot be indexed"}
	}
	deleteAt(doc, segs)
	return nil
}

func deleteAt(container any, segs []Segment) any {
	seg := segs[0]
	last := len(segs) == 1

	switch node := container.(type) {
	case map[string]any:
		existing, found := node[seg.Key]
		if !found {
			return node
		}
		if last {
			delete(node, seg.Key)
			return node
		}
		node[seg.Key] = deleteAt(existing, segs[1:])
		return node
	case []any:
		if !seg.IsIndex || seg.Index < 0 || seg.Index >= len(node) {
			return node
		}
		if last {
			return append(node[:seg.Index:seg.Index], node[seg.Index+1:]...)
		}
		node[seg.Index] = deleteAt(node[seg.Index], segs[1:])
		return node
	default:
		return container
	}
}
