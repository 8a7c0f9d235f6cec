package value

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func key(s string) *Object { return NewObjString([]byte(s)) }

func TestTableSetGetDelete(t *testing.T) {
	var tbl Table
	a := key("a")

	isNew := tbl.Set(a, Number(1))
	assert.True(t, isNew)

	v, ok := tbl.Get(a)
	assert.True(t, ok)
	assert.Equal(t, Number(1), v)

	isNew = tbl.Set(a, Number(2))
	assert.False(t, isNew, "overwriting an existing key is not a new insertion")
	v, _ = tbl.Get(a)
	assert.Equal(t, Number(2), v)

	assert.True(t, tbl.Delete(a))
	_, ok = tbl.Get(a)
	assert.False(t, ok)
}

func TestTableHasDoesNotMutate(t *testing.T) {
	var tbl Table
	a := key("a")
	assert.False(t, tbl.Has(a))
	tbl.Set(a, Bool_(true))
	assert.True(t, tbl.Has(a))
	assert.Equal(t, 1, tbl.Count())
}

func TestTableSurvivesTombstonesOnProbeChain(t *testing.T) {
	var tbl Table
	keys := make([]*Object, 0, 64)
	for i := 0; i < 64; i++ {
		k := key(fmt.Sprintf("k%d", i))
		keys = append(keys, k)
		tbl.Set(k, Number(float64(i)))
	}

	// delete every other key, leaving tombstones interleaved with live
	// entries across whatever probe chains the hash produced
	for i := 0; i < len(keys); i += 2 {
		assert.True(t, tbl.Delete(keys[i]))
	}

	for i, k := range keys {
		v, ok := tbl.Get(k)
		if i%2 == 0 {
			assert.False(t, ok)
		} else {
			assert.True(t, ok)
			assert.Equal(t, Number(float64(i)), v)
		}
	}
}

func TestTableGrowsAndRehashes(t *testing.T) {
	var tbl Table
	const n = 200
	for i := 0; i < n; i++ {
		tbl.Set(key(fmt.Sprintf("key-%d", i)), Number(float64(i)))
	}
	assert.Equal(t, n, tbl.Count())
}

func TestFindStringInterningRoundTrip(t *testing.T) {
	var tbl Table
	chars := []byte("shared")
	hash := HashBytes(chars)

	assert.Nil(t, tbl.FindString(chars, hash))

	obj := NewObjString(chars)
	tbl.Set(obj, Nil)

	found := tbl.FindString([]byte("shared"), hash)
	assert.Same(t, obj, found)
}

func TestFindStringSkipsTombstones(t *testing.T) {
	var tbl Table
	a := NewObjString([]byte("a"))
	// "i" has the same home slot as "a" in an 8-slot table, so it lands
	// one slot past "a" and its probe chain runs through a's tombstone
	b := NewObjString([]byte("i"))
	tbl.Set(a, Nil)
	tbl.Set(b, Nil)
	tbl.Delete(a)

	found := tbl.FindString([]byte("i"), b.Hash)
	assert.Same(t, b, found)
}

func TestAddAllCopiesLiveEntries(t *testing.T) {
	var from, to Table
	a := key("a")
	from.Set(a, Number(1))
	AddAll(&from, &to)
	v, ok := to.Get(a)
	assert.True(t, ok)
	assert.Equal(t, Number(1), v)
}
