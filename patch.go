package deepdist

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Patch applies a delta dictionary produced by Deltas to the value v points
// at, mutating it in place. v must be a non-nil pointer. Containers along
// patched paths must be map[string]interface{} or []interface{} values, the
// shape JSON decoding produces.
//
// Changes are applied category by category: value & type changes first, then
// dictionary removals & additions, then iterable removals (deepest index
// first) & additions. A path that doesn't resolve in v is an error; earlier
// categories may already be applied when Patch errors
func Patch(v interface{}, delta map[string]interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("deepdist: patch target must be a non-nil pointer, got %T", v)
	}
	root := rv.Elem().Interface()
	var err error

	for _, key := range []string{KeyValuesChanged, KeyTypeChanges} {
		changes, ok := delta[key].(map[string]interface{})
		if !ok {
			continue
		}
		for p, payload := range changes {
			if root, err = applySet(root, p, newValueOf(payload)); err != nil {
				return err
			}
		}
	}

	if removed, ok := delta[KeyDictItemRemoved].(map[string]interface{}); ok {
		for p := range removed {
			if root, err = applyDelete(root, p); err != nil {
				return err
			}
		}
	}
	if added, ok := delta[KeyDictItemAdded].(map[string]interface{}); ok {
		for p, val := range added {
			if root, err = applySet(root, p, val); err != nil {
				return err
			}
		}
	}

	if removed, ok := delta[KeyItemRemoved].(map[string]interface{}); ok {
		for _, p := range pathsByIndex(removed, true) {
			if root, err = applyDelete(root, p); err != nil {
				return err
			}
		}
	}
	if added, ok := delta[KeyItemAdded].(map[string]interface{}); ok {
		for _, p := range pathsByIndex(added, false) {
			if root, err = applyInsert(root, p, added[p]); err != nil {
				return err
			}
		}
	}

	if removed, ok := delta[KeyRemovedAtIndexes].(map[string]map[int]interface{}); ok {
		for parent, record := range removed {
			for _, i := range recordIndexes(record, true) {
				if root, err = applyDelete(root, join(parent, strconv.Itoa(i))); err != nil {
					return err
				}
			}
		}
	}
	if added, ok := delta[KeyAddedAtIndexes].(map[string]map[int]interface{}); ok {
		for parent, record := range added {
			for _, i := range recordIndexes(record, false) {
				if root, err = applyInsert(root, join(parent, strconv.Itoa(i)), record[i]); err != nil {
					return err
				}
			}
		}
	}

	out := reflect.ValueOf(root)
	if !out.IsValid() {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
		return nil
	}
	if !out.Type().AssignableTo(rv.Elem().Type()) {
		return fmt.Errorf("deepdist: cannot assign patched %s to %s target", out.Type(), rv.Elem().Type())
	}
	rv.Elem().Set(out)
	return nil
}

// apply walks all but the final path segment down root & hands the container
// holding the final segment to op. containers are reassigned on the way back
// up so slices that change length propagate to their parents
func apply(root interface{}, segs []string, op func(container interface{}, name string) (interface{}, error)) (interface{}, error) {
	if len(segs) == 1 {
		return op(root, segs[0])
	}
	head, rest := segs[0], segs[1:]
	switch c := root.(type) {
	case map[string]interface{}:
		child, ok := c[head]
		if !ok {
			return nil, fmt.Errorf("deepdist: no key %q to descend into", head)
		}
		updated, err := apply(child, rest, op)
		if err != nil {
			return nil, err
		}
		c[head] = updated
		return c, nil
	case []interface{}:
		i, err := index(head, len(c)-1)
		if err != nil {
			return nil, err
		}
		updated, err := apply(c[i], rest, op)
		if err != nil {
			return nil, err
		}
		c[i] = updated
		return c, nil
	}
	return nil, fmt.Errorf("deepdist: cannot descend into %T at %q", root, head)
}

func applySet(root interface{}, p string, val interface{}) (interface{}, error) {
	segs := splitPath(p)
	if len(segs) == 0 {
		return val, nil
	}
	return apply(root, segs, func(container interface{}, name string) (interface{}, error) {
		switch c := container.(type) {
		case map[string]interface{}:
			c[name] = val
			return c, nil
		case []interface{}:
			i, err := index(name, len(c)-1)
			if err != nil {
				return nil, err
			}
			c[i] = val
			return c, nil
		}
		return nil, fmt.Errorf("deepdist: cannot set %q in %T", p, container)
	})
}

func applyDelete(root interface{}, p string) (interface{}, error) {
	segs := splitPath(p)
	if len(segs) == 0 {
		return nil, fmt.Errorf("deepdist: cannot delete the root value")
	}
	return apply(root, segs, func(container interface{}, name string) (interface{}, error) {
		switch c := container.(type) {
		case map[string]interface{}:
			delete(c, name)
			return c, nil
		case []interface{}:
			i, err := index(name, len(c)-1)
			if err != nil {
				return nil, err
			}
			return append(c[:i], c[i+1:]...), nil
		}
		return nil, fmt.Errorf("deepdist: cannot delete %q from %T", p, container)
	})
}

func applyInsert(root interface{}, p string, val interface{}) (interface{}, error) {
	segs := splitPath(p)
	if len(segs) == 0 {
		return nil, fmt.Errorf("deepdist: cannot insert at the root value")
	}
	return apply(root, segs, func(container interface{}, name string) (interface{}, error) {
		c, ok := container.([]interface{})
		if !ok {
			return nil, fmt.Errorf("deepdist: cannot insert %q into %T", p, container)
		}
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("deepdist: bad insert index %q", name)
		}
		if i > len(c) {
			i = len(c)
		}
		c = append(c, nil)
		copy(c[i+1:], c[i:])
		c[i] = val
		return c, nil
	})
}

func newValueOf(payload interface{}) interface{} {
	if m, ok := payload.(map[string]interface{}); ok {
		if v, ok := m["new_value"]; ok {
			return v
		}
	}
	return payload
}

func index(name string, max int) (int, error) {
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || i > max {
		return 0, fmt.Errorf("deepdist: index %q out of range", name)
	}
	return i, nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// pathsByIndex orders change paths by their final numeric segment, grouped by
// parent. removals run deepest-index-first so earlier removals don't shift
// later ones
func pathsByIndex(changes map[string]interface{}, descending bool) []string {
	paths := make([]string, 0, len(changes))
	for p := range changes {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(a, b int) bool {
		pa, ia := splitLast(paths[a])
		pb, ib := splitLast(paths[b])
		if pa != pb {
			return pa < pb
		}
		if descending {
			return ia > ib
		}
		return ia < ib
	})
	return paths
}

func splitLast(p string) (string, int) {
	segs := splitPath(p)
	if len(segs) == 0 {
		return "", 0
	}
	i, _ := strconv.Atoi(segs[len(segs)-1])
	return strings.Join(segs[:len(segs)-1], "/"), i
}

func recordIndexes(record map[int]interface{}, descending bool) []int {
	idxs := make([]int, 0, len(record))
	for i := range record {
		idxs = append(idxs, i)
	}
	if descending {
		sort.Sort(sort.Reverse(sort.IntSlice(idxs)))
	} else {
		sort.Ints(idxs)
	}
	return idxs
}
