package deepdist

import (
	"encoding/hex"
	"hash"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// NewHash returns a new hash interface, wrapped in a function for easy
// hash algorithm switching, package consumers can override NewHash
// with their own desired hash.Hash implementation if the value space is
// particularly large. default is xxHash for fast, cheap,
// (non-cryptographic) hashing
var NewHash = func() hash.Hash {
	return xxhash.New()
}

// hashStr converts a hash sum to a string using hex encoding
// localized here for easy encoding swapping
func hashStr(sum []byte) string {
	return hex.EncodeToString(sum)
}

// Entry pairs a value's content hash with the rough count of elements the
// value is made of
type Entry struct {
	Sum  []byte
	Size int
}

// Table memoizes hash & size pairs for values, keyed by value identity.
// A table belongs to the comparison session that fills it: Compare populates
// one per session when order is ignored, or callers can own a table and share
// it across comparisons with OptionHashTable. Tables are not safe for
// concurrent use; callers running parallel sessions against a shared table
// must serialize access themselves.
type Table struct {
	entries map[interface{}]Entry
}

// NewTable creates an empty hash table
func NewTable() *Table {
	return &Table{entries: map[interface{}]Entry{}}
}

// Len returns the number of recorded entries
func (t *Table) Len() int { return len(t.entries) }

// Lookup fetches the recorded entry for v, if any
func (t *Table) Lookup(v interface{}) (Entry, bool) {
	k, ok := identityKey(v)
	if !ok {
		return Entry{}, false
	}
	e, ok := t.entries[k]
	return e, ok
}

// Populate hashes v and every descendant value, recording an entry for each
func (t *Table) Populate(v interface{}) {
	nodes := make(chan node)
	done := make(chan struct{})
	go func() {
		for n := range nodes {
			t.add(n)
		}
		close(done)
	}()
	tree(v, "", nil, nodes)
	close(nodes)
	<-done
}

func (t *Table) add(n node) {
	if k, ok := identityKey(n.Value()); ok {
		t.entries[k] = Entry{Sum: n.Hash(), Size: n.Size()}
	}
}

type nilIdentity struct{}

type sliceIdentity struct {
	ptr uintptr
	len int
}

// identityKey reduces a value to a comparable key that stands in for its
// identity: the data pointer for pointer-shaped values, the value itself for
// comparable scalars. The second return is false for values that have no
// usable identity (non-comparable, non-pointer kinds)
func identityKey(v interface{}) (interface{}, bool) {
	if v == nil {
		return nilIdentity{}, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		// two slices can share a data pointer but differ in length
		return sliceIdentity{ptr: rv.Pointer(), len: rv.Len()}, true
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.Pointer(), true
	}
	if rv.Comparable() {
		return v, true
	}
	return nil, false
}
