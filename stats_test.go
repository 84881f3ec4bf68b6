package deepdist

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCalcStats(t *testing.T) {
	aJSON := []byte(`{"a":1,"b":[1,2]}`)
	bJSON := []byte(`{"a":2,"b":[1,2,3]}`)

	var a, b map[string]interface{}
	if err := json.Unmarshal(aJSON, &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(bJSON, &b); err != nil {
		t.Fatal(err)
	}

	expect := &Stats{
		LeftNodes:     5,
		RightNodes:    6,
		LeftSize:      7,
		RightSize:     8,
		ValuesChanged: 1,
		ItemsAdded:    1,
	}
	stats := &Stats{}
	if _, err := Compare(a, b, OptionSetStats(stats)); err != nil {
		t.Fatal(err)
	}

	if expect.NodeChange() != stats.NodeChange() {
		t.Errorf("wrong node change. want: %d. got: %d", expect.NodeChange(), stats.NodeChange())
	}
	if expect.PctSizeChange() != stats.PctSizeChange() {
		t.Errorf("wrong percentage of size change. want: %f. got: %f", expect.PctSizeChange(), stats.PctSizeChange())
	}
	if !reflect.DeepEqual(expect, stats) {
		t.Errorf("response mismatch")
		t.Logf("want: %v", expect)
		t.Logf("got: %v", stats)
	}
}

func TestStatsIndexedCounts(t *testing.T) {
	var a, b interface{}
	if err := json.Unmarshal([]byte(`[1,2,3]`), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`[3,2,1,4,5]`), &b); err != nil {
		t.Fatal(err)
	}

	stats := &Stats{}
	if _, err := Compare(a, b, OptionIgnoreOrder(), OptionSetStats(stats)); err != nil {
		t.Fatal(err)
	}

	// indexed additions count as added items
	if stats.ItemsAdded != 2 {
		t.Errorf("wrong items added. want: 2. got: %d", stats.ItemsAdded)
	}
}
