package deepdist

import (
	"encoding/json"
	"fmt"
)

func Example() {
	// start with two slightly different json documents
	aJSON := []byte(`{"a": 1}`)
	bJSON := []byte(`{"a": 1, "b": 2}`)

	// unmarshal the data into generic interfaces
	var a, b interface{}
	if err := json.Unmarshal(aJSON, &a); err != nil {
		panic(err)
	}
	if err := json.Unmarshal(bJSON, &b); err != nil {
		panic(err)
	}

	// compare the two documents. ignoring order hashes both inputs, which
	// also makes distance available
	diff, err := Compare(a, b, OptionIgnoreOrder())
	if err != nil {
		panic(err)
	}

	// the delta dictionary groups changes by category, keyed by path
	data, err := json.Marshal(diff.Deltas())
	if err != nil {
		panic(err)
	}
	fmt.Println(string(data))

	// distance divides the number of changes by the combined element count
	// of both documents: one addition over 3 + 5 elements
	dist, err := diff.DeepDistance()
	if err != nil {
		panic(err)
	}
	fmt.Printf("distance: %v\n", dist)
	// Output:
	// {"dictionary_item_added":{"/b":2}}
	// distance: 0.125
}

func ExampleCompare_stats() {
	var a, b interface{}
	if err := json.Unmarshal([]byte(`{"a":1,"b":[1,2]}`), &a); err != nil {
		panic(err)
	}
	if err := json.Unmarshal([]byte(`{"a":2,"b":[1,2,3]}`), &b); err != nil {
		panic(err)
	}

	stats := &Stats{}
	if _, err := Compare(a, b, OptionSetStats(stats)); err != nil {
		panic(err)
	}

	data, err := json.Marshal(stats)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(data))
	// Output:
	// {"leftNodes":5,"rightNodes":6,"leftSize":7,"rightSize":8,"valuesChanged":1,"itemsAdded":1}
}
