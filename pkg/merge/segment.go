package merge

// Link is one way inside a chain. Reversed means the way is travelled
// against its stored node order.
type Link struct {
	ID       int64
	Reversed bool
}

// Signed returns the way id, negated when the link is reversed.
func (l Link) Signed() int64 {
	if l.Reversed {
		return -l.ID
	}
	return l.ID
}

// Key scopes which ways may merge with each other.
type Key struct {
	Name string
	Ref  string
}

// Segment is a single road way as produced by the reader.
// Only the first and last node references are kept.
type Segment struct {
	ID       int64
	Start    int64 // first node in stored order
	End      int64 // last node in stored order
	Reversed bool  // reversal tag present (oneway=-1)
	Road     bool  // road marker tag present (highway=*)
	Name     string
	Ref      string
}

// Key returns the segment's descriptive key.
func (s Segment) Key() Key {
	return Key{Name: s.Name, Ref: s.Ref}
}

// Ends implements Linear.
func (s Segment) Ends() (a, b int64) {
	return s.Start, s.End
}

// Links implements Linear.
func (s Segment) Links() []Link {
	return []Link{{ID: s.ID, Reversed: s.Reversed}}
}

// Linear is anything with two free endpoints and an ordered run of links
// between them: a raw segment or a whole chain.
type Linear interface {
	Ends() (a, b int64)
	Links() []Link
}

// flipped returns links in reverse order with every flag inverted.
func flipped(links []Link) []Link {
	out := make([]Link, len(links))
	for i, l := range links {
		out[len(links)-1-i] = Link{ID: l.ID, Reversed: !l.Reversed}
	}
	return out
}
