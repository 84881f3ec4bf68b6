package deepdist

import (
	"bytes"
	"reflect"
	"sort"
	"strconv"
	"sync"
)

// View selects which result representation a Comparison keeps around
type View uint8

const (
	// ReportView keeps the full categorized Report (the default)
	ReportView View = iota
	// DeltaView additionally precomputes the delta dictionary at compare time
	DeltaView
)

// Config are any possible configuration parameters for a comparison
type Config struct {
	// If true iterable elements are matched by content instead of position,
	// hashing both inputs into the session's hash table as a side effect
	IgnoreOrder bool
	// If true count mismatches of items present on both sides are reported as
	// repetition changes instead of plain additions & removals
	ReportRepetition bool
	// View selects the retained result representation
	View View
	// Provide a non-nil stats pointer & Compare will populate it with data
	// from the comparison
	Stats *Stats
	// Hashes lets a caller own the hash table & share it across comparisons.
	// When nil an ignore-order comparison creates its own
	Hashes *Table
}

// Option is a function that adjusts a config, zero or more Options can be
// passed to Compare
type Option func(cfg *Config)

// OptionIgnoreOrder matches iterable elements by content, not position
func OptionIgnoreOrder() Option {
	return func(cfg *Config) { cfg.IgnoreOrder = true }
}

// OptionReportRepetition reports repeat-count mismatches as repetition changes
func OptionReportRepetition() Option {
	return func(cfg *Config) { cfg.ReportRepetition = true }
}

// OptionSetStats will set the passed-in stats pointer when Compare is called
func OptionSetStats(st *Stats) Option {
	return func(cfg *Config) { cfg.Stats = st }
}

// OptionHashTable supplies an externally-owned hash table for the session
func OptionHashTable(t *Table) Option {
	return func(cfg *Config) { cfg.Hashes = t }
}

// OptionDeltaView precomputes the delta dictionary at compare time
func OptionDeltaView() Option {
	return func(cfg *Config) { cfg.View = DeltaView }
}

// Comparison is one diff session over a pair of values. It owns the
// categorized report of changes and, for ignore-order sessions, the hash
// table filled while preparing both inputs
type Comparison struct {
	cfg    *Config
	t1, t2 interface{}
	n1, n2 node
	hashes *Table
	rep    *Report
	delta  map[string]interface{}
}

// Compare diffs t1 against t2, returning a Comparison holding the changes
// that would turn t1 into t2.
// currently Compare will never return an error, error returns are reserved
// for future use. specifically: bailing before delta calculation based on a
// configurable threshold
func Compare(t1, t2 interface{}, opts ...Option) (*Comparison, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Comparison{cfg: cfg, t1: t1, t2: t2, hashes: cfg.Hashes, rep: newReport()}
	if cfg.IgnoreOrder && c.hashes == nil {
		c.hashes = NewTable()
	}
	c.n1, c.n2 = c.prepTrees()
	c.compare("/", c.n1, c.n2)

	if cfg.Stats != nil {
		c.calcStats()
	}
	if cfg.View == DeltaView {
		c.delta = c.rep.deltaDict(cfg.ReportRepetition)
	}
	return c, nil
}

// Report returns the categorized changes of this comparison
func (c *Comparison) Report() *Report { return c.rep }

// Deltas projects the report into a delta dictionary: a mapping from change
// category to per-path change records
func (c *Comparison) Deltas() map[string]interface{} {
	if c.delta != nil {
		return c.delta
	}
	return c.rep.deltaDict(c.cfg.ReportRepetition)
}

// HashTable returns the session's hash table. nil unless the comparison
// hashed its inputs (ignore-order mode) or a caller supplied a table
func (c *Comparison) HashTable() *Table { return c.hashes }

// prepTrees builds node trees for both inputs in parallel. hashing sessions
// register every subtree in the hash table through a collector goroutine
func (c *Comparison) prepTrees() (t1, t2 node) {
	if !c.cfg.IgnoreOrder || c.hashes == nil {
		return tree(c.t1, "", nil, nil), tree(c.t2, "", nil, nil)
	}

	var (
		wg    sync.WaitGroup
		nodes = make(chan node)
		done  = make(chan struct{})
	)

	go func() {
		for n := range nodes {
			c.hashes.add(n)
		}
		close(done)
	}()

	wg.Add(2)
	go func() {
		t1 = tree(c.t1, "", nil, nodes)
		wg.Done()
	}()
	go func() {
		t2 = tree(c.t2, "", nil, nodes)
		wg.Done()
	}()
	wg.Wait()
	close(nodes)
	<-done
	return t1, t2
}

func (c *Comparison) compare(p string, n1, n2 node) {
	if bytes.Equal(n1.Hash(), n2.Hash()) {
		return
	}
	if n1.Type() != n2.Type() {
		c.rep.typeChange(p, n1.Value(), n2.Value())
		return
	}

	switch n1.Type() {
	case ntObject:
		c.compareObjects(p, n1.(compound), n2.(compound))
	case ntStruct:
		c.compareStructs(p, n1.(compound), n2.(compound))
	case ntArray:
		if c.cfg.IgnoreOrder {
			c.compareUnordered(p, n1.(compound), n2.(compound))
		} else {
			c.compareOrdered(p, n1.(compound), n2.(compound))
		}
	default:
		c.rep.valueChange(p, n1.Value(), n2.Value())
	}
}

func (c *Comparison) compareObjects(p string, o1, o2 compound) {
	seen := map[string]bool{}
	for _, ch1 := range o1.Children() {
		name := ch1.Name()
		seen[name] = true
		if ch2 := o2.Child(name); ch2 != nil {
			c.compare(join(p, name), ch1, ch2)
		} else {
			c.rep.dictItemRemoved(join(p, name), ch1.Value())
		}
	}
	for _, ch2 := range o2.Children() {
		if !seen[ch2.Name()] {
			c.rep.dictItemAdded(join(p, ch2.Name()), ch2.Value())
		}
	}
}

func (c *Comparison) compareStructs(p string, s1, s2 compound) {
	if reflect.TypeOf(s1.Value()) != reflect.TypeOf(s2.Value()) {
		c.rep.typeChange(p, s1.Value(), s2.Value())
		return
	}
	for _, ch1 := range s1.Children() {
		if ch2 := s2.Child(ch1.Name()); ch2 != nil {
			c.compare(join(p, ch1.Name()), ch1, ch2)
		}
	}
}

func (c *Comparison) compareOrdered(p string, a1, a2 compound) {
	ch1, ch2 := a1.Children(), a2.Children()
	shared := len(ch1)
	if len(ch2) < shared {
		shared = len(ch2)
	}
	for i := 0; i < shared; i++ {
		c.compare(join(p, strconv.Itoa(i)), ch1[i], ch2[i])
	}
	for i := shared; i < len(ch2); i++ {
		c.rep.itemAdded(join(p, strconv.Itoa(i)), ch2[i].Value())
	}
	for i := shared; i < len(ch1); i++ {
		c.rep.itemRemoved(join(p, strconv.Itoa(i)), ch1[i].Value())
	}
}

// compareUnordered matches the children of two arrays by content hash.
// fully matched hashes drop out, count mismatches become repetition changes
// when repetition reporting is on, and whatever remains is paired
// positionally & recursed into. leftovers after pairing are recorded per
// index under the parent path
func (c *Comparison) compareUnordered(p string, a1, a2 compound) {
	ch1, ch2 := a1.Children(), a2.Children()

	idx1 := map[string][]int{}
	idx2 := map[string][]int{}
	for i, n := range ch1 {
		key := hashStr(n.Hash())
		idx1[key] = append(idx1[key], i)
	}
	for j, n := range ch2 {
		key := hashStr(n.Hash())
		idx2[key] = append(idx2[key], j)
	}

	var pending1, pending2 []int
	visited := map[string]bool{}
	consider := func(key string, value interface{}) {
		if visited[key] {
			return
		}
		visited[key] = true
		is1, is2 := idx1[key], idx2[key]
		switch {
		case len(is1) == len(is2):
			// fully matched
		case len(is1) > 0 && len(is2) > 0 && c.cfg.ReportRepetition:
			c.rep.repetition(p, value, is1, is2)
		case len(is1) < len(is2):
			pending2 = append(pending2, is2[len(is1):]...)
		default:
			pending1 = append(pending1, is1[len(is2):]...)
		}
	}
	for _, n := range ch1 {
		consider(hashStr(n.Hash()), n.Value())
	}
	for _, n := range ch2 {
		consider(hashStr(n.Hash()), n.Value())
	}
	sort.Ints(pending1)
	sort.Ints(pending2)

	// pair leftovers in index order & recurse, extras past the shorter side
	// are reported per index
	k := 0
	for ; k < len(pending1) && k < len(pending2); k++ {
		c.compare(join(p, strconv.Itoa(pending2[k])), ch1[pending1[k]], ch2[pending2[k]])
	}
	for _, j := range pending2[k:] {
		c.rep.addedAtIndex(p, j, ch2[j].Value())
	}
	for _, i := range pending1[k:] {
		c.rep.removedAtIndex(p, i, ch1[i].Value())
	}
}

func (c *Comparison) calcStats() {
	st := c.cfg.Stats
	walk(c.n1, "/", func(p string, n node) bool {
		st.LeftNodes++
		return true
	})
	walk(c.n2, "/", func(p string, n node) bool {
		st.RightNodes++
		return true
	})
	st.LeftSize = c.n1.Size()
	st.RightSize = c.n2.Size()

	st.DictItemsAdded = len(c.rep.DictItemsAdded)
	st.DictItemsRemoved = len(c.rep.DictItemsRemoved)
	st.ValuesChanged = len(c.rep.ValuesChanged)
	st.TypeChanges = len(c.rep.TypeChanges)
	st.ItemsAdded = len(c.rep.ItemsAdded)
	st.ItemsRemoved = len(c.rep.ItemsRemoved)
	for _, idxs := range c.rep.AddedAtIndexes {
		st.ItemsAdded += len(idxs)
	}
	for _, idxs := range c.rep.RemovedAtIndexes {
		st.ItemsRemoved += len(idxs)
	}
	for _, chs := range c.rep.RepetitionChanges {
		st.Repetitions += len(chs)
	}
}
