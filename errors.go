package deepdist

// PreconditionError reports a comparison that was configured in a way that
// makes the requested result undefined. Callers match with errors.Is against
// the package sentinels or errors.As against *PreconditionError
type PreconditionError struct {
	reason string
}

func (e *PreconditionError) Error() string {
	return "deepdist: " + e.reason
}

var (
	// ErrHashesRequired - distance needs the element counts recorded in a
	// populated hash table, none is attached to the comparison
	ErrHashesRequired = &PreconditionError{reason: "distance requires a populated hash table"}
	// ErrUnorderedComparison - distance is only defined over ignore-order
	// comparisons
	ErrUnorderedComparison = &PreconditionError{reason: "distance requires an ignore-order comparison"}
)
