package merge

import "slices"

// ChainSet holds the disjoint chains known for one key, in creation order.
type ChainSet struct {
	chains []*Chain
}

// NewChainSet starts a set with a single-link chain for seg.
func NewChainSet(seg Segment) *ChainSet {
	return &ChainSet{chains: []*Chain{NewChain(seg)}}
}

// Add attaches seg to the first chain that accepts it, or starts a new
// chain. A chain that grew is then offered to the other chains once, so a
// segment bridging two chains fuses them.
func (s *ChainSet) Add(seg Segment) {
	grown := -1
	for i, c := range s.chains {
		if c.Attach(seg) {
			grown = i
			break
		}
	}
	if grown < 0 {
		s.chains = append(s.chains, NewChain(seg))
		return
	}

	target := -1
	for i, c := range s.chains {
		if i == grown {
			continue
		}
		if c.Attach(s.chains[grown]) {
			target = i
			break
		}
	}
	if target >= 0 {
		s.chains = slices.Delete(s.chains, grown, grown+1)
	}
}

// Chains returns every chain, singletons included.
func (s *ChainSet) Chains() []*Chain {
	return s.chains
}

// LongChains returns the chains made of more than one link.
func (s *ChainSet) LongChains() []*Chain {
	var out []*Chain
	for _, c := range s.chains {
		if c.Len() > 1 {
			out = append(out, c)
		}
	}
	return out
}
