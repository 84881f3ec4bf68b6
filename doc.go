// Package deepdist compares arbitrarily nested data values & measures how far
// apart they are. It's intended for structured data ranging from decoded JSON
// documents to plain Go structs.
//
// A comparison produces a categorized report of changes: dictionary items
// added & removed, values changed, type changes, and iterable items added or
// removed. When order is ignored, iterable elements are matched by content
// (using per-subtree hashes) rather than by position, and surplus elements are
// recorded per index under their parent path.
//
// On top of the report deepdist computes a deep distance: the number of
// elementary edit operations the delta encodes, divided by the combined rough
// size of both inputs. The result is 0 for equal values and approaches 1 as
// the inputs grow apart relative to their size. This is a similar concept to
// Levenshtein edit distance, lifted to structured data.
//
// Distance is only defined for ignore-order comparisons, because the rough
// size of each input is a byproduct of the hashing pass that unordered
// matching performs. Requesting distance from an ordered comparison fails
// with a PreconditionError rather than returning a number.
//
// deepdist operates on the go types created by unmarshaling from JSON, which
// are two complex types:
//
//	map[string]interface{}
//	[]interface{}
//
// five scalar types:
//
//	string, int, float64, bool, nil
//
// and additionally on structs & pointers to structs, compared field by field.
// by operating on native go types deepdist can compare documents encoded in
// different formats, for example decoded CSV or CBOR.
package deepdist
