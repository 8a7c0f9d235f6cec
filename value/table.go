package value

const tableMaxLoad = 0.75

// Entry is one slot of a Table. An empty slot has Key == nil and
// Value.IsNil(); a tombstone (a deleted slot kept alive to preserve probe
// chains) has Key == nil and Value equal to Bool(true).
type Entry struct {
	Key   *Object
	Value Value
}

func (e Entry) isEmpty() bool {
	return e.Key == nil && e.Value.IsNil()
}

func (e Entry) isTombstone() bool {
	return e.Key == nil && e.Value.IsBool() && e.Value.Bool
}

// Table is a linear-probing open-addressing hash table keyed by interned
// string object identity, used both for the VM's globals and for its
// string-interning set (spec.md §4.5).
type Table struct {
	count   int
	entries []Entry
}

func (t *Table) capacity() int { return len(t.entries) }

// findEntry returns the slot a lookup/insert for key should use: the
// matching entry if key is present, otherwise the first tombstone seen,
// otherwise the first true empty slot. Lookups must keep probing past
// tombstones; insertions prefer to reuse one.
func findEntry(entries []Entry, key *Object) *Entry {
	capacity := len(entries)
	index := int(key.Hash) % capacity
	var tombstone *Entry

	for {
		entry := &entries[index]
		if entry.Key == nil {
			if entry.Value.IsNil() {
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
	for i := range entries {
		entries[i] = Entry{Value: Nil}
	}

	t.count = 0
	for _, old := range t.entries {
		if old.Key == nil {
			continue
		}
		dest := findEntry(entries, old.Key)
		dest.Key = old.Key
		dest.Value = old.Value
		t.count++
	}
	t.entries = entries
}

// Get looks up key, returning its value and whether it was found.
func (t *Table) Get(key *Object) (Value, bool) {
	if t.count == 0 {
		return Nil, false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return Nil, false
	}
	return entry.Value, true
}

// Has reports whether key is present, without allocating or mutating the
// table. Used as the non-mutating probe for SET_GLOBAL (spec.md §9).
func (t *Table) Has(key *Object) bool {
	_, ok := t.Get(key)
	return ok
}

// Set inserts or overwrites key's value. It returns true iff this is a
// newly-inserted key.
func (t *Table) Set(key *Object, v Value) bool {
	if float64(t.count+1) > float64(t.capacity())*tableMaxLoad {
		capacity := 8
		if t.capacity() > 0 {
			capacity = t.capacity() * 2
		}
		t.adjustCapacity(capacity)
	}

	entry := findEntry(t.entries, key)
	isNewKey := entry.Key == nil
	if isNewKey && entry.Value.IsNil() {
		t.count++
	}

	entry.Key = key
	entry.Value = v
	return isNewKey
}

// Delete turns key's slot into a tombstone, so that the probe chain for
// keys that hashed past it stays intact. The internal count is not
// decremented, so tombstones keep counting toward the load factor until
// the next resize.
func (t *Table) Delete(key *Object) bool {
	if t.count == 0 {
		return false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return false
	}
	entry.Key = nil
	entry.Value = Bool_(true)
	return true
}

// AddAll copies every live entry of from into t.
func AddAll(from, to *Table) {
	for _, entry := range from.entries {
		if entry.Key != nil {
			to.Set(entry.Key, entry.Value)
		}
	}
}

// FindString is the interning probe: it compares length, hash, then bytes,
// returning the already-interned object on a match or nil otherwise. Like
// findEntry it keeps scanning past tombstones; it cannot just call
// findEntry because findEntry matches keys by object identity, while here
// there is only the candidate's bytes and hash to compare.
func (t *Table) FindString(chars []byte, hash uint32) *Object {
	if t.count == 0 {
		return nil
	}
	capacity := t.capacity()
	index := int(hash) % capacity
	for {
		entry := &t.entries[index]
		if entry.Key == nil {
			if !entry.isTombstone() {
				return nil
			}
		} else if entry.Key.Hash == hash && len(entry.Key.Chars) == len(chars) && string(entry.Key.Chars) == string(chars) {
			return entry.Key
		}
		index = (index + 1) % capacity
	}
}

// Count returns the number of live (non-tombstone, non-empty) entries.
func (t *Table) Count() int {
	n := 0
	for _, entry := range t.entries {
		if entry.Key != nil {
			n++
		}
	}
	return n
}
