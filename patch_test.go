package deepdist

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type patchCase struct {
	description string
	src, dst    string
}

func runPatchCases(t *testing.T, cases []patchCase, opts ...Option) {
	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			var src, dst interface{}
			if err := json.Unmarshal([]byte(c.src), &src); err != nil {
				t.Fatal(err)
			}
			if err := json.Unmarshal([]byte(c.dst), &dst); err != nil {
				t.Fatal(err)
			}

			diff, err := Compare(src, dst, opts...)
			if err != nil {
				t.Fatalf("Compare error: %s", err)
			}

			if err := Patch(&src, diff.Deltas()); err != nil {
				t.Fatalf("error patching source: %s", err)
			}
			if d := cmp.Diff(dst, src); d != "" {
				t.Errorf("patched result mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestPatchOrdered(t *testing.T) {
	runPatchCases(t, []patchCase{
		{"scalar change", `{"a":1}`, `{"a":2}`},
		{"type change", `{"a":1}`, `{"a":"1"}`},
		{"dict add & remove", `{"a":1,"b":2}`, `{"a":1,"c":3}`},
		{"array element change", `[[0,1,2]]`, `[[0,1,3]]`},
		{"append", `[1]`, `[1,2]`},
		{"truncate", `[1,2,3]`, `[1]`},
		{"change & truncate", `[1,2,3]`, `[1,4]`},
		{"nested object change", `{"a":{"b":[1,2]}}`, `{"a":{"b":[1,5],"c":true}}`},
	})
}

func TestPatchIgnoreOrder(t *testing.T) {
	runPatchCases(t, []patchCase{
		{"append detected by content", `[1,2,3]`, `[1,2,3,4]`},
		{"removal detected by content", `[1,2,3,4]`, `[1,2,3]`},
	}, OptionIgnoreOrder())
}

func TestPatchBadTarget(t *testing.T) {
	if err := Patch(nil, map[string]interface{}{}); err == nil {
		t.Error("expected an error for a nil target")
	}
	var v interface{}
	if err := Patch(v, map[string]interface{}{}); err == nil {
		t.Error("expected an error for a non-pointer target")
	}
}

func TestPatchMissingPath(t *testing.T) {
	var v interface{} = map[string]interface{}{"a": float64(1)}
	delta := map[string]interface{}{
		KeyValuesChanged: map[string]interface{}{
			"/missing/deep": map[string]interface{}{"new_value": float64(2)},
		},
	}
	if err := Patch(&v, delta); err == nil {
		t.Error("expected an error for an unresolvable path")
	}
}
