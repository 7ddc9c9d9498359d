package reconcile

import (
	"fmt"
	"regexp"
	"strings"
)

// Built-in area names.
const (
	AreaProduct = "product"
	AreaCache   = "cache"
)

// AreaKind selects the key extraction rule for an area.
type AreaKind int

const (
	// KindDerived areas (resized caches) embed routing segments before the
	// two-character signature, so the key is searched anywhere in the path.
	KindDerived AreaKind = iota
	// KindPrimary areas keep the signature directly in front of the file name.
	KindPrimary
)

func (k AreaKind) String() string {
	if k == KindPrimary {
		return "primary"
	}
	return "derived"
}

// Area is a named partition of the media tree matched by directory pattern.
type Area struct {
	Name    string
	Kind    AreaKind
	Pattern *regexp.Regexp
}

// Matches reports whether a slash-separated directory path belongs to the area.
func (a Area) Matches(dir string) bool {
	return a.Pattern != nil && a.Pattern.MatchString(dir)
}

// AreaTable maps area names to compiled patterns, preserving registration order.
type AreaTable struct {
	order []string
	areas map[string]Area
}

// NewAreaTable returns an empty table.
func NewAreaTable() *AreaTable {
	return &AreaTable{areas: make(map[string]Area)}
}

// DefaultAreas returns the catalog image areas: original product images and
// the resized image cache.
func DefaultAreas() *AreaTable {
	t := NewAreaTable()
	_ = t.Register(AreaProduct, `/product/[^/]/`, KindPrimary)
	_ = t.Register(AreaCache, `/cache/`, KindDerived)
	return t
}

// Register compiles pattern and adds (or replaces) the area called name.
func (t *AreaTable) Register(name, pattern string, kind AreaKind) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty area name", ErrInvalidPattern)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("%w: area %s: %v", ErrInvalidPattern, name, err)
	}

	if _, exists := t.areas[name]; !exists {
		t.order = append(t.order, name)
	}
	t.areas[name] = Area{Name: name, Kind: kind, Pattern: re}
	return nil
}

// RegisterSpec registers an area from a "name=pattern" definition.
// Areas registered this way are derived areas.
func (t *AreaTable) RegisterSpec(spec string) error {
	name, pattern, ok := strings.Cut(spec, "=")
	if !ok {
		return fmt.Errorf("%w: expected name=pattern, got %q", ErrInvalidPattern, spec)
	}
	return t.Register(name, pattern, KindDerived)
}

// Names returns the area names in registration order.
func (t *AreaTable) Names() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)
	return names
}

// Lookup returns the area registered under name.
func (t *AreaTable) Lookup(name string) (Area, bool) {
	a, ok := t.areas[name]
	return a, ok
}

// Resolve turns an ordered include list into enabled areas. Names without a
// registered pattern are returned separately; duplicates keep their first
// position. An empty include list enables every area in table order.
func (t *AreaTable) Resolve(include []string) (enabled []Area, unknown []string) {
	if len(include) == 0 {
		include = t.order
	}

	seen := make(map[string]bool, len(include))
	for _, raw := range include {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		area, ok := t.areas[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		enabled = append(enabled, area)
	}
	return enabled, unknown
}

// Classify returns the first enabled area whose pattern matches dir.
// Order matters: the first match wins, not the best one.
func Classify(dir string, enabled []Area) (Area, bool) {
	if i := classifyIndex(dir, enabled); i >= 0 {
		return enabled[i], true
	}
	return Area{}, false
}

func classifyIndex(dir string, enabled []Area) int {
	for i, area := range enabled {
		if area.Matches(dir) {
			return i
		}
	}
	return -1
}
