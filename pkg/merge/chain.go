package merge

// linkDeque holds links with amortized O(1) growth at both ends.
// front is stored in reverse: front[len-1] is the first link.
type linkDeque struct {
	front []Link
	back  []Link
}

func (d *linkDeque) size() int { return len(d.front) + len(d.back) }

// pushFront puts links, in the given order, before the current first link.
func (d *linkDeque) pushFront(links []Link) {
	for i := len(links) - 1; i >= 0; i-- {
		d.front = append(d.front, links[i])
	}
}

func (d *linkDeque) pushBack(links []Link) {
	d.back = append(d.back, links...)
}

func (d *linkDeque) slice() []Link {
	out := make([]Link, 0, d.size())
	for i := len(d.front) - 1; i >= 0; i-- {
		out = append(out, d.front[i])
	}
	return append(out, d.back...)
}

// Chain is an ordered run of connected ways with two free endpoints.
// end0 is the free node of the first link, end1 that of the last.
type Chain struct {
	links  linkDeque
	end0   int64
	end1   int64
	closed bool
}

// NewChain creates a single-link chain. Its endpoints follow the stored
// node order; the reversed flag only affects the recorded link.
func NewChain(l Linear) *Chain {
	a, b := l.Ends()
	c := &Chain{end0: a, end1: b}
	c.links.pushBack(l.Links())
	c.closed = a == b
	return c
}

// Ends implements Linear.
func (c *Chain) Ends() (a, b int64) {
	return c.end0, c.end1
}

// Links implements Linear. The returned slice is a copy.
func (c *Chain) Links() []Link {
	return c.links.slice()
}

// Len returns the number of links.
func (c *Chain) Len() int {
	return c.links.size()
}

// Closed reports whether both endpoints are the same node.
// Closed chains neither accept nor join other chains.
func (c *Chain) Closed() bool {
	return c.closed
}

// Attach extends the chain with l when one of l's endpoints coincides with
// one of the chain's free endpoints. It reports whether l was attached;
// l itself is never modified. Links go in at either end in travel order
// with their flags as they are after flipping, so prepending does not
// invert them a second time.
func (c *Chain) Attach(l Linear) bool {
	if c.closed {
		return false
	}
	a, b := l.Ends()
	// Ring ways and closed chains stay on their own.
	if a == b {
		return false
	}

	// Same-side matches are turned into opposite-side ones by flipping l.
	flip := a == c.end0 || b == c.end1
	if flip {
		a, b = b, a
	}

	var front bool
	switch {
	case b == c.end0:
		front = true
	case a == c.end1:
	default:
		return false
	}

	// Copy links only after a match.
	links := l.Links()
	if flip {
		links = flipped(links)
	}
	if front {
		c.links.pushFront(links)
		c.end0 = a
	} else {
		c.links.pushBack(links)
		c.end1 = b
	}

	c.closed = c.end0 == c.end1
	return true
}
