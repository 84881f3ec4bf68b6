package deepdist

import (
	"reflect"
	"strconv"
)

// Change category keys used in delta dictionaries. Two of these are reserved:
// KeyAddedAtIndexes & KeyRemovedAtIndexes map a parent path to a record of
// {index: value} pairs rather than to a single change payload
const (
	KeyTypeChanges      = "type_changes"
	KeyValuesChanged    = "values_changed"
	KeyDictItemAdded    = "dictionary_item_added"
	KeyDictItemRemoved  = "dictionary_item_removed"
	KeyItemAdded        = "iterable_item_added"
	KeyItemRemoved      = "iterable_item_removed"
	KeyAddedAtIndexes   = "iterable_items_added_at_indexes"
	KeyRemovedAtIndexes = "iterable_items_removed_at_indexes"
	KeyRepetitionChange = "repetition_change"
)

// ValueChange records a scalar value replacement at one path
type ValueChange struct {
	Old interface{} `json:"oldValue"`
	New interface{} `json:"newValue"`
}

// TypeChange records a value whose kind changed at one path
type TypeChange struct {
	OldType reflect.Type `json:"-"`
	NewType reflect.Type `json:"-"`
	Old     interface{}  `json:"oldValue"`
	New     interface{}  `json:"newValue"`
}

// RepetitionChange records a repeat-count mismatch of one value under an
// iterable parent: the value occurs at OldIndexes in t1 and NewIndexes in t2
type RepetitionChange struct {
	Value      interface{} `json:"value"`
	OldIndexes []int       `json:"oldIndexes"`
	NewIndexes []int       `json:"newIndexes"`
}

// Report is the categorized result of one comparison, keyed by path (for
// repetition changes & indexed records, by the iterable's parent path)
type Report struct {
	TypeChanges       map[string]*TypeChange
	ValuesChanged     map[string]*ValueChange
	DictItemsAdded    map[string]interface{}
	DictItemsRemoved  map[string]interface{}
	ItemsAdded        map[string]interface{}
	ItemsRemoved      map[string]interface{}
	AddedAtIndexes    map[string]map[int]interface{}
	RemovedAtIndexes  map[string]map[int]interface{}
	RepetitionChanges map[string][]*RepetitionChange
}

func newReport() *Report {
	return &Report{
		TypeChanges:       map[string]*TypeChange{},
		ValuesChanged:     map[string]*ValueChange{},
		DictItemsAdded:    map[string]interface{}{},
		DictItemsRemoved:  map[string]interface{}{},
		ItemsAdded:        map[string]interface{}{},
		ItemsRemoved:      map[string]interface{}{},
		AddedAtIndexes:    map[string]map[int]interface{}{},
		RemovedAtIndexes:  map[string]map[int]interface{}{},
		RepetitionChanges: map[string][]*RepetitionChange{},
	}
}

// Empty returns true when the report records no changes at all
func (r *Report) Empty() bool {
	return len(r.TypeChanges) == 0 &&
		len(r.ValuesChanged) == 0 &&
		len(r.DictItemsAdded) == 0 &&
		len(r.DictItemsRemoved) == 0 &&
		len(r.ItemsAdded) == 0 &&
		len(r.ItemsRemoved) == 0 &&
		len(r.AddedAtIndexes) == 0 &&
		len(r.RemovedAtIndexes) == 0 &&
		len(r.RepetitionChanges) == 0
}

func (r *Report) typeChange(p string, before, after interface{}) {
	r.TypeChanges[p] = &TypeChange{
		OldType: reflect.TypeOf(before),
		NewType: reflect.TypeOf(after),
		Old:     before,
		New:     after,
	}
}

func (r *Report) valueChange(p string, before, after interface{}) {
	r.ValuesChanged[p] = &ValueChange{Old: before, New: after}
}

func (r *Report) dictItemAdded(p string, v interface{})   { r.DictItemsAdded[p] = v }
func (r *Report) dictItemRemoved(p string, v interface{}) { r.DictItemsRemoved[p] = v }
func (r *Report) itemAdded(p string, v interface{})       { r.ItemsAdded[p] = v }
func (r *Report) itemRemoved(p string, v interface{})     { r.ItemsRemoved[p] = v }

func (r *Report) addedAtIndex(parent string, idx int, v interface{}) {
	if r.AddedAtIndexes[parent] == nil {
		r.AddedAtIndexes[parent] = map[int]interface{}{}
	}
	r.AddedAtIndexes[parent][idx] = v
}

func (r *Report) removedAtIndex(parent string, idx int, v interface{}) {
	if r.RemovedAtIndexes[parent] == nil {
		r.RemovedAtIndexes[parent] = map[int]interface{}{}
	}
	r.RemovedAtIndexes[parent][idx] = v
}

func (r *Report) repetition(parent string, v interface{}, oldIdx, newIdx []int) {
	r.RepetitionChanges[parent] = append(r.RepetitionChanges[parent], &RepetitionChange{
		Value:      v,
		OldIndexes: oldIdx,
		NewIndexes: newIdx,
	})
}

// deltaDict projects the report into a delta dictionary: category key →
// {path: change record}. With repetition off, repetition changes are folded
// back into the indexed add & remove records; every surplus index then
// references the same underlying value
func (r *Report) deltaDict(withRepetition bool) map[string]interface{} {
	d := map[string]interface{}{}

	if len(r.TypeChanges) > 0 {
		changes := map[string]interface{}{}
		for p, ch := range r.TypeChanges {
			changes[p] = map[string]interface{}{
				"old_type":  ch.OldType,
				"new_type":  ch.NewType,
				"new_value": ch.New,
			}
		}
		d[KeyTypeChanges] = changes
	}
	if len(r.ValuesChanged) > 0 {
		changes := map[string]interface{}{}
		for p, ch := range r.ValuesChanged {
			changes[p] = map[string]interface{}{"new_value": ch.New}
		}
		d[KeyValuesChanged] = changes
	}
	copyCategory(d, KeyDictItemAdded, r.DictItemsAdded)
	copyCategory(d, KeyDictItemRemoved, r.DictItemsRemoved)
	copyCategory(d, KeyItemAdded, r.ItemsAdded)
	copyCategory(d, KeyItemRemoved, r.ItemsRemoved)

	added := copyIndexed(r.AddedAtIndexes)
	removed := copyIndexed(r.RemovedAtIndexes)

	if withRepetition {
		if len(r.RepetitionChanges) > 0 {
			changes := map[string]interface{}{}
			for parent, chs := range r.RepetitionChanges {
				for _, ch := range chs {
					p := join(parent, strconv.Itoa(ch.NewIndexes[0]))
					changes[p] = map[string]interface{}{
						"value":       ch.Value,
						"old_indexes": ch.OldIndexes,
						"new_indexes": ch.NewIndexes,
					}
				}
			}
			d[KeyRepetitionChange] = changes
		}
	} else {
		for parent, chs := range r.RepetitionChanges {
			for _, ch := range chs {
				if len(ch.NewIndexes) > len(ch.OldIndexes) {
					if added[parent] == nil {
						added[parent] = map[int]interface{}{}
					}
					for _, idx := range ch.NewIndexes[len(ch.OldIndexes):] {
						added[parent][idx] = ch.Value
					}
				} else {
					if removed[parent] == nil {
						removed[parent] = map[int]interface{}{}
					}
					for _, idx := range ch.OldIndexes[len(ch.NewIndexes):] {
						removed[parent][idx] = ch.Value
					}
				}
			}
		}
	}

	if len(added) > 0 {
		d[KeyAddedAtIndexes] = added
	}
	if len(removed) > 0 {
		d[KeyRemovedAtIndexes] = removed
	}
	return d
}

func copyCategory(d map[string]interface{}, key string, src map[string]interface{}) {
	if len(src) == 0 {
		return
	}
	dst := make(map[string]interface{}, len(src))
	for p, v := range src {
		dst[p] = v
	}
	d[key] = dst
}

func copyIndexed(src map[string]map[int]interface{}) map[string]map[int]interface{} {
	dst := map[string]map[int]interface{}{}
	for p, idxs := range src {
		m := make(map[int]interface{}, len(idxs))
		for i, v := range idxs {
			m[i] = v
		}
		dst[p] = m
	}
	return dst
}
