// Package table implements the open-addressed, linear-probed hash table
// used by the VM for both the globals table and the string-intern table.
// It is deliberately hand-written rather than built on a third-party
// map: tombstone bookkeeping, FNV-1a probing by hash, and a 0.75 load
// factor are observable, testable behavior here, which a general-purpose
// map type would hide behind an opaque implementation.
package table

import "github.com/mna/ember/lang/value"

const maxLoad = 0.75

// Entry is one slot in the table. An Entry with a nil Key and a nil
// Value is empty; a nil Key and a value.Bool(true) Value is a tombstone
// left behind by Delete, keeping probe chains intact.
type Entry struct {
	Key   *value.String
	Value value.Value
	Const bool
}

func (e *Entry) isTombstone() bool {
	if e.Key != nil {
		return false
	}
	b, ok := e.Value.(value.Bool)
	return ok && bool(b)
}

func (e *Entry) isEmpty() bool { return e.Key == nil && e.Value == nil }

// Table is an open-addressed hash table keyed by interned strings.
// count includes tombstones, since they occupy a slot and drive the
// 0.75 load-factor growth trigger just as live entries do.
type Table struct {
	count   int
	entries []Entry
}

func findEntry(entries []Entry, key *value.String) *Entry {
	capacity := uint32(len(entries))
	index := key.Hash % capacity
	var tombstone *Entry
	for {
		entry := &entries[index]
		if entry.Key == nil {
			if entry.Value == nil {
				if tombstone != nil {
					return tombstone
				}
				return entry
			}
			if tombstone == nil {
				tombstone = entry
			}
		} else if entry.Key == key {
			return entry
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) adjustCapacity(capacity int) {
	entries := make([]Entry, capacity)
	t.count = 0
	for i := range t.entries {
		old := &t.entries[i]
		if old.Key == nil {
			continue
		}
		dest := findEntry(entries, old.Key)
		dest.Key = old.Key
		dest.Value = old.Value
		dest.Const = old.Const
		t.count++
	}
	t.entries = entries
}

// Get looks up key and reports whether it was found, along with its
// value and whether it was defined const.
func (t *Table) Get(key *value.String) (value.Value, bool, bool) {
	if t.count == 0 {
		return nil, false, false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return nil, false, false
	}
	return entry.Value, entry.Const, true
}

// Set inserts or overwrites key -> val with the given const flag. It
// reports whether this created a brand-new key (as opposed to
// overwriting an existing one), matching tableSet's isNewKey return.
func (t *Table) Set(key *value.String, val value.Value, isConst bool) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		capacity := growCapacity(len(t.entries))
		t.adjustCapacity(capacity)
	}

	entry := findEntry(t.entries, key)
	isNewKey := entry.Key == nil
	if isNewKey && entry.Value == nil {
		t.count++
	}

	entry.Key = key
	entry.Value = val
	entry.Const = isConst
	return isNewKey
}

// Delete removes key, leaving a tombstone so later probe chains through
// this bucket remain intact.
func (t *Table) Delete(key *value.String) bool {
	if t.count == 0 {
		return false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return false
	}
	entry.Key = nil
	entry.Value = value.Bool(true)
	entry.Const = false
	return true
}

// Snapshot returns every live (non-tombstone) entry as a plain map,
// keyed by the entry's string content. Used by the debug package's
// globals listing, where a stable Go map is easier to sort and print
// than walking the open-addressed slot array directly.
func (t *Table) Snapshot() map[string]value.Value {
	out := make(map[string]value.Value, t.count)
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key == nil {
			continue
		}
		out[e.Key.Chars] = e.Value
	}
	return out
}

// FindString probes the table by hash looking for an already-interned
// string with identical length, hash and byte content. It is the
// primitive that makes string interning possible: (*intern.Strings).Intern
// calls this before allocating a new String object.
func (t *Table) FindString(chars string, hash uint32) *value.String {
	if t.count == 0 {
		return nil
	}
	capacity := uint32(len(t.entries))
	index := hash % capacity
	for {
		entry := &t.entries[index]
		if entry.Key == nil {
			if !entry.isTombstone() {
				return nil
			}
		} else if entry.Key.Hash == hash && entry.Key.Chars == chars {
			return entry.Key
		}
		index = (index + 1) % capacity
	}
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}
