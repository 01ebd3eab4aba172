package profile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a data path: either a key into a keyed container or
// an index into a sequence. A raw segment consisting solely of digits is an
// index, anything else is a key.
type Segment struct {
	key     string
	index   int
	indexed bool
}

// Key builds a key segment.
func Key(name string) Segment {
	return Segment{key: name}
}

// Index builds an index segment.
func Index(n int) Segment {
	return Segment{index: n, indexed: true}
}

// Indexed reports whether the segment addresses a sequence slot.
func (s Segment) Indexed() bool { return s.indexed }

// Name returns the key of a key segment, or "" for an index segment.
func (s Segment) Name() string { return s.key }

// Pos returns the slot of an index segment, or 0 for a key segment.
func (s Segment) Pos() int { return s.index }

func (s Segment) String() string {
	if s.indexed {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path is a parsed data path.
type Path []Segment

// ParsePath splits a dot-notation path into typed segments. Digit-only
// segments become indices. Empty segments are dropped.
func ParsePath(raw string) Path {
	parts := strings.Split(raw, ".")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if isDigits(part) {
			n, _ := strconv.Atoi(part)
			path = append(path, Index(n))
			continue
		}
		path = append(path, Key(part))
	}
	return path
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Get resolves path against a document tree. Missing or wrong-kind
// intermediates yield (nil, false), never an error.
func Get(root map[string]interface{}, path Path) (interface{}, bool) {
	var current interface{} = root
	for _, seg := range path {
		if seg.Indexed() {
			arr, ok := current.([]interface{})
			if !ok || seg.Pos() < 0 || seg.Pos() >= len(arr) {
				return nil, false
			}
			current = arr[seg.Pos()]
			continue
		}
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[seg.Name()]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// Set writes value into the document tree at path, creating intermediate
// containers as needed: maps for key segments, sequences for index segments.
// Wrong-kind intermediates are replaced. Sequences grow with nil slots up to
// the addressed index.
func Set(root map[string]interface{}, path Path, value interface{}) error {
	if len(path) == 0 {
		return fmt.Errorf("empty data path")
	}
	if path[0].Indexed() {
		return fmt.Errorf("data path %q must start with a key segment", path.String())
	}
	_, err := setIn(root, path, value)
	return err
}

func setIn(container interface{}, segs Path, value interface{}) (interface{}, error) {
	seg := segs[0]

	if seg.Indexed() {
		arr, ok := container.([]interface{})
		if !ok {
			arr = []interface{}{}
		}
		for len(arr) <= seg.Pos() {
			arr = append(arr, nil)
		}
		if len(segs) == 1 {
			arr[seg.Pos()] = value
			return arr, nil
		}
		child := arr[seg.Pos()]
		if child == nil {
			child = newContainer(segs[1])
		}
		updated, err := setIn(child, segs[1:], value)
		if err != nil {
			return nil, err
		}
		arr[seg.Pos()] = updated
		return arr, nil
	}

	m, ok := container.(map[string]interface{})
	if !ok {
		m = map[string]interface{}{}
	}
	if len(segs) == 1 {
		m[seg.Name()] = value
		return m, nil
	}
	child := m[seg.Name()]
	if child == nil {
		child = newContainer(segs[1])
	}
	updated, err := setIn(child, segs[1:], value)
	if err != nil {
		return nil, err
	}
	m[seg.Name()] = updated
	return m, nil
}

func newContainer(next Segment) interface{} {
	if next.Indexed() {
		return []interface{}{}
	}
	return map[string]interface{}{}
}

// Document returns the profile's JSON projection as a document tree. Path
// traversal operates on this projection, not on the struct itself.
func (p *ApplicantProfile) Document() (map[string]interface{}, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to project profile: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to project profile: %w", err)
	}
	return doc, nil
}

// ApplyDocument replaces the profile's content from a document tree. Unknown
// keys are dropped, mistyped leaves fail.
func (p *ApplicantProfile) ApplyDocument(doc map[string]interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to apply document: %w", err)
	}
	var next ApplicantProfile
	if err := json.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("failed to apply document: %w", err)
	}
	*p = next
	return nil
}
