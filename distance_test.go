package deepdist

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, data string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(data), &v))
	return v
}

func TestDeepDistance(t *testing.T) {
	cases := []struct {
		description string
		src, dst    string
		expect      float64
	}{
		// one added element over 3 + 5 total elements
		{"dict item added", `{"a":1}`, `{"a":1,"b":2}`, 0.125},
		{"item appended", `[1,2,3]`, `[1,2,3,4]`, 1.0 / 9},
		{"value changed", `{"a":1}`, `{"a":2}`, 1.0 / 6},
		{"equal after reordering", `[3,1,2]`, `[1,2,3]`, 0},
		// every surplus index references the same value, counted once
		{"repeated value folded once", `[1]`, `[1,1,1]`, 1.0 / 6},
	}
	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			diff, err := Compare(mustParse(t, c.src), mustParse(t, c.dst), OptionIgnoreOrder())
			require.NoError(t, err)

			got, err := diff.DeepDistance()
			require.NoError(t, err)
			assert.InDelta(t, c.expect, got, 1e-12)
			assert.True(t, got >= 0 && got <= 1, "distance %f out of range", got)
		})
	}
}

func TestDeepDistanceWithRepetition(t *testing.T) {
	diff, err := Compare(mustParse(t, `[1]`), mustParse(t, `[1,1,1]`),
		OptionIgnoreOrder(), OptionReportRepetition())
	require.NoError(t, err)

	// repetition changes fold back into indexed records for the ratio, so
	// reporting them doesn't move the distance
	got, err := diff.DeepDistance()
	require.NoError(t, err)
	assert.InDelta(t, 1.0/6, got, 1e-12)
}

func TestDeepDistanceShortCircuit(t *testing.T) {
	orig := estimateRoughLength
	estimateRoughLength = func(v interface{}, hashes *Table) (int, error) {
		t.Error("rough length estimated for an empty delta")
		return 0, nil
	}
	defer func() { estimateRoughLength = orig }()

	diff, err := Compare(mustParse(t, `[1,2,3]`), mustParse(t, `[3,2,1]`), OptionIgnoreOrder())
	require.NoError(t, err)

	got, err := diff.DeepDistance()
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestDeepDistancePreconditions(t *testing.T) {
	a := mustParse(t, `[1,2]`)
	b := mustParse(t, `[2,1]`)

	diff, err := Compare(a, b)
	require.NoError(t, err)
	_, err = diff.DeepDistance()
	assert.True(t, errors.Is(err, ErrHashesRequired), "got: %v", err)

	// a populated table alone isn't enough, order must have been ignored
	tbl := NewTable()
	tbl.Populate(a)
	tbl.Populate(b)
	diff, err = Compare(a, b, OptionHashTable(tbl))
	require.NoError(t, err)
	_, err = diff.DeepDistance()
	assert.True(t, errors.Is(err, ErrUnorderedComparison), "got: %v", err)

	var pe *PreconditionError
	assert.True(t, errors.As(err, &pe))
}

func TestDiffLengthDispatch(t *testing.T) {
	type point struct{ X, Y int }

	cases := []struct {
		description string
		item        interface{}
		expect      int
	}{
		{"nil", nil, 0},
		{"int", 5, 1},
		{"bool", true, 1},
		{"float", 3.14, 1},
		{"string", "hello", 1},
		{"slice sums elements", []interface{}{1, 2, "x"}, 3},
		{"type marker", reflect.TypeOf(0), 1},
		{"struct counts field names", point{1, 2}, 2},
		{"struct pointer counts field names", &point{}, 2},
		{"map sums values", map[string]interface{}{"a": 1, "b": []interface{}{1, 2}}, 3},
	}
	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			assert.Equal(t, c.expect, newDiffLengthCounter().count(c.item))
		})
	}
}

func TestDiffLengthIndexDedup(t *testing.T) {
	delta := map[string]interface{}{
		KeyAddedAtIndexes: map[string]map[int]interface{}{
			"/": {1: float64(7), 2: float64(7), 5: float64(9)},
		},
	}
	assert.Equal(t, 2, newDiffLengthCounter().count(delta))

	shared := []interface{}{float64(1), float64(2)}
	delta = map[string]interface{}{
		KeyRemovedAtIndexes: map[string]map[int]interface{}{
			"/": {0: shared, 3: shared},
		},
	}
	assert.Equal(t, 2, newDiffLengthCounter().count(delta))
}

func TestDiffLengthMemoization(t *testing.T) {
	shared := []interface{}{float64(1), float64(2), float64(3)}
	delta := map[string]interface{}{
		KeyItemAdded: map[string]interface{}{"/0": shared, "/1": shared},
	}

	c := newDiffLengthCounter()
	assert.Equal(t, 6, c.count(delta))
	// recounting reads the memo, same answer
	assert.Equal(t, 6, c.count(delta))
}
