package reconcile

import "strings"

// ReferenceSet is the immutable set of canonical keys that are still in use.
// It is folded once at construction so lookups stay O(1).
type ReferenceSet struct {
	keys map[string]struct{}
	fold bool
}

// NewReferenceSet builds a set from raw identifiers. Duplicates collapse and
// blank identifiers are dropped. When caseInsensitive is set every identifier
// is lower-cased, matching ExtractKey with fold enabled.
func NewReferenceSet(ids []string, caseInsensitive bool) *ReferenceSet {
	keys := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if caseInsensitive {
			id = strings.ToLower(id)
		}
		keys[id] = struct{}{}
	}
	return &ReferenceSet{keys: keys, fold: caseInsensitive}
}

// Contains reports whether key is referenced.
func (r *ReferenceSet) Contains(key string) bool {
	if r == nil {
		return false
	}
	if r.fold {
		key = strings.ToLower(key)
	}
	_, ok := r.keys[key]
	return ok
}

// Len returns the number of distinct keys.
func (r *ReferenceSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// CaseInsensitive reports whether the set was folded to lower case.
func (r *ReferenceSet) CaseInsensitive() bool {
	return r != nil && r.fold
}
