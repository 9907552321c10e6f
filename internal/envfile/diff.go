package envfile

import "sort"

// Change is one key-level difference between two env files.
type Change struct {
	Key  string `json:"key"`
	Old  string `json:"old,omitempty"`
	New  string `json:"new,omitempty"`
	Kind string `json:"kind"` // added, removed, changed
}

// Diff compares f against other and returns key-level changes, sorted by
// key. "added" means present in other but not f.
func (f *File) Diff(other *File) []Change {
	a := f.Values()
	b := other.Values()

	var changes []Change
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			changes = append(changes, Change{Key: k, Old: av, Kind: "removed"})
		} else if av != bv {
			changes = append(changes, Change{Key: k, Old: av, New: bv, Kind: "changed"})
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			changes = append(changes, Change{Key: k, New: bv, Kind: "added"})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes
}
