package deepdist

// Stats holds statistical metadata about a comparison
type Stats struct {
	LeftNodes  int `json:"leftNodes"`  // count of nodes in the left tree
	RightNodes int `json:"rightNodes"` // count of nodes in the right tree
	LeftSize   int `json:"leftSize"`   // rough element count of the left tree
	RightSize  int `json:"rightSize"`  // rough element count of the right tree

	DictItemsAdded   int `json:"dictItemsAdded,omitempty"`
	DictItemsRemoved int `json:"dictItemsRemoved,omitempty"`
	ValuesChanged    int `json:"valuesChanged,omitempty"`
	TypeChanges      int `json:"typeChanges,omitempty"`
	ItemsAdded       int `json:"itemsAdded,omitempty"`
	ItemsRemoved     int `json:"itemsRemoved,omitempty"`
	Repetitions      int `json:"repetitions,omitempty"`
}

// NodeChange returns a count of the shift in number of nodes between left &
// right trees
func (s Stats) NodeChange() int {
	return s.RightNodes - s.LeftNodes
}

// PctSizeChange returns a value from 0-1 representing the size of the left
// tree against the right
func (s Stats) PctSizeChange() float64 {
	if s.RightSize == 0 {
		return 0
	}
	return float64(s.LeftSize) / float64(s.RightSize)
}
