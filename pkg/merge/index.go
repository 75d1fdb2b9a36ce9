package merge

// Road is a chain read out of the index together with its key.
type Road struct {
	Key    Key
	Links  []Link
	Start  int64 // free node of the first link
	End    int64 // free node of the last link
	Closed bool
}

// Signed returns the road's way ids, negative for reversed links.
func (r Road) Signed() []int64 {
	ids := make([]int64, len(r.Links))
	for i, l := range r.Links {
		ids[i] = l.Signed()
	}
	return ids
}

// Stats summarizes the index contents.
type Stats struct {
	Keys     int
	Chains   int
	Segments int
}

// GroupIndex routes segments to the ChainSet of their key.
// Keys are remembered in first-seen order.
type GroupIndex struct {
	sets     map[Key]*ChainSet
	order    []Key
	segments int
}

// NewGroupIndex returns an empty index.
func NewGroupIndex() *GroupIndex {
	return &GroupIndex{sets: make(map[Key]*ChainSet)}
}

// Process adds seg to its key's ChainSet. Segments without the road marker,
// or with neither a name nor a ref, are ignored. It reports whether seg
// was accepted.
func (g *GroupIndex) Process(seg Segment) bool {
	if !seg.Road || (seg.Name == "" && seg.Ref == "") {
		return false
	}
	key := seg.Key()
	if set, ok := g.sets[key]; ok {
		set.Add(seg)
	} else {
		g.sets[key] = NewChainSet(seg)
		g.order = append(g.order, key)
	}
	g.segments++
	return true
}

// Finalize returns every merged road, i.e. every chain of two or more
// links, ordered by key insertion and then by chain order within the key.
func (g *GroupIndex) Finalize() []Road {
	return g.Roads(2)
}

// Roads is Finalize with a custom minimum link count.
func (g *GroupIndex) Roads(minLinks int) []Road {
	var roads []Road
	for _, key := range g.order {
		for _, c := range g.sets[key].Chains() {
			if c.Len() < minLinks {
				continue
			}
			start, end := c.Ends()
			roads = append(roads, Road{
				Key:    key,
				Links:  c.Links(),
				Start:  start,
				End:    end,
				Closed: c.Closed(),
			})
		}
	}
	return roads
}

// Stats returns the number of keys, chains and accepted segments.
func (g *GroupIndex) Stats() Stats {
	st := Stats{Keys: len(g.order), Segments: g.segments}
	for _, set := range g.sets {
		st.Chains += len(set.Chains())
	}
	return st
}
