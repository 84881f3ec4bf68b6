package deepdist

import (
	"fmt"
	"reflect"
)

// DeepDistance gives a numeric value for how far apart the two compared
// values are, based on how many operations are needed to convert one into
// the other divided by the number of elements that make up both.
//
// A distance of 0 means the values are equal, a distance of 1 is very far.
// The result lands in [0, 1] for well-formed inputs.
//
// Rough element counts come from the hash table filled while preparing an
// ignore-order comparison, so distance is only defined when order was
// ignored: any other session fails with a *PreconditionError. Re-running the
// comparison with OptionIgnoreOrder is the only fix; there is nothing to
// retry
func (c *Comparison) DeepDistance() (float64, error) {
	if c.hashes == nil || c.hashes.Len() == 0 {
		return 0, ErrHashesRequired
	}
	if !c.cfg.IgnoreOrder {
		return 0, ErrUnorderedComparison
	}

	// distance always folds repetition changes into the indexed records, so a
	// delta precomputed with repetition reporting on can't be reused here
	delta := c.delta
	if delta == nil || c.cfg.ReportRepetition {
		delta = c.rep.deltaDict(false)
	}

	diffLen := newDiffLengthCounter().count(delta)
	if diffLen == 0 {
		return 0, nil
	}

	l1, err := estimateRoughLength(c.t1, c.hashes)
	if err != nil {
		return 0, err
	}
	l2, err := estimateRoughLength(c.t2, c.hashes)
	if err != nil {
		return 0, err
	}
	// a non-empty delta implies at least one non-trivial input
	if l1+l2 == 0 {
		return 0, fmt.Errorf("deepdist: zero combined length for a non-empty delta")
	}
	return float64(diffLen) / float64(l1+l2), nil
}

// estimateRoughLength returns the rough count of elements a value is made of,
// reading from the session's hash table & triggering a hashing pass on a
// miss. The table is shared state: the miss path mutates it. Declared as a
// var for the same reason NewHash is: callers with unusual value spaces can
// swap the estimator
var estimateRoughLength = func(v interface{}, hashes *Table) (int, error) {
	if ent, ok := hashes.Lookup(v); ok {
		return ent.Size, nil
	}
	hashes.Populate(v)
	ent, ok := hashes.Lookup(v)
	if !ok {
		return 0, fmt.Errorf("deepdist: no hash table entry for %T value after populating", v)
	}
	return ent.Size, nil
}

// diffLengthCounter counts the elementary operations a delta dictionary
// encodes, memoizing per-node counts by value identity so a node visited
// twice is only counted once. memoization is best effort: values without a
// usable identity are simply recomputed
type diffLengthCounter struct {
	memo map[interface{}]int
}

func newDiffLengthCounter() *diffLengthCounter {
	return &diffLengthCounter{memo: map[interface{}]int{}}
}

// count dispatches on the kind of item. evaluation order matters where kinds
// overlap & must stay: mapping, number, string, iterable, type marker,
// field-bearing value
func (c *diffLengthCounter) count(item interface{}) (n int) {
	if item == nil {
		return 0
	}
	key, keyed := identityKey(item)
	if keyed {
		if cached, ok := c.memo[key]; ok {
			return cached
		}
		defer func() { c.memo[key] = n }()
	}

	rv := reflect.ValueOf(item)
	switch {
	case rv.Kind() == reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if k := iter.Key(); k.Kind() == reflect.String {
				if name := k.String(); name == KeyAddedAtIndexes || name == KeyRemovedAtIndexes {
					n += c.countIndexRecords(iter.Value())
					continue
				}
			}
			n += c.count(iface(iter.Value()))
		}
	case isAtomicKind(rv.Kind()):
		n = 1
	case rv.Kind() == reflect.String:
		n = 1
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			n += c.count(iface(rv.Index(i)))
		}
	default:
		if _, ok := item.(reflect.Type); ok {
			n = 1
			break
		}
		sv := rv
		if sv.Kind() == reflect.Ptr && !sv.IsNil() {
			sv = sv.Elem()
		}
		if sv.Kind() == reflect.Struct {
			// degenerate fallback for unexpected node shapes: one unit per
			// field name, not per field value
			n = sv.Type().NumField()
		}
	}
	return n
}

// countIndexRecords counts a reserved indexed category: {path: {index:
// value}}. within each path's record, entries whose value has already
// appeared (by identity) are dropped before counting, so one physical value
// recorded at several indexes contributes a single unit
func (c *diffLengthCounter) countIndexRecords(sub reflect.Value) (n int) {
	if sub.Kind() == reflect.Interface {
		sub = sub.Elem()
	}
	if sub.Kind() != reflect.Map {
		return c.count(iface(sub))
	}

	iter := sub.MapRange()
	for iter.Next() {
		record := iter.Value()
		if record.Kind() == reflect.Interface {
			record = record.Elem()
		}
		if record.Kind() != reflect.Map {
			n += c.count(iface(record))
			continue
		}
		seen := map[interface{}]bool{}
		entries := record.MapRange()
		for entries.Next() {
			v := iface(entries.Value())
			if k, ok := identityKey(v); ok {
				if seen[k] {
					continue
				}
				seen[k] = true
			}
			n += c.count(v)
		}
	}
	return n
}

func isAtomicKind(k reflect.Kind) bool {
	switch k {
	// bools ride along with numbers as atomic change units
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func iface(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}
