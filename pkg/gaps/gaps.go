// Package gaps finds chains of one road that end close to each other
// without sharing a node. Such pairs are usually digitizing errors: a
// missing connection, or two nodes placed on top of each other.
package gaps

import (
	"cmp"
	"slices"

	"github.com/tidwall/rtree"

	"github.com/Zverik/join-roads/pkg/geo"
	"github.com/Zverik/join-roads/pkg/merge"
)

// Endpoint is a free end of one chain.
type Endpoint struct {
	Road  merge.Road
	Index int // position of Road in the input slice
	Node  int64
	Point geo.Point
}

// Gap is the closest pair of endpoints between two chains of one key.
type Gap struct {
	Key    merge.Key
	A, B   Endpoint // A.Index < B.Index
	Meters float64
}

// Endpoints collects the node ids of every open chain end, for LocateNodes.
func Endpoints(roads []merge.Road) map[int64]struct{} {
	ids := make(map[int64]struct{}, 2*len(roads))
	for _, r := range roads {
		if r.Closed {
			continue
		}
		ids[r.Start] = struct{}{}
		ids[r.End] = struct{}{}
	}
	return ids
}

// Find reports every pair of chains with the same key whose ends lie within
// meters of each other, nearest first. Closed chains and ends without
// coordinates are ignored.
func Find(roads []merge.Road, coords map[int64]geo.Point, meters float64) []Gap {
	var eps []Endpoint
	var tr rtree.RTreeG[int]

	for i, r := range roads {
		if r.Closed {
			continue
		}
		for _, node := range []int64{r.Start, r.End} {
			p, ok := coords[node]
			if !ok {
				continue
			}
			pt := [2]float64{p.Lon, p.Lat}
			tr.Insert(pt, pt, len(eps))
			eps = append(eps, Endpoint{Road: r, Index: i, Node: node, Point: p})
		}
	}

	best := make(map[[2]int]Gap)
	for _, a := range eps {
		visit := func(_, _ [2]float64, j int) bool {
			b := eps[j]
			if b.Index <= a.Index || b.Road.Key != a.Road.Key {
				return true
			}
			d := geo.Distance(a.Point, b.Point)
			if d > meters {
				return true
			}
			pair := [2]int{a.Index, b.Index}
			if g, ok := best[pair]; !ok || d < g.Meters {
				best[pair] = Gap{Key: a.Road.Key, A: a, B: b, Meters: d}
			}
			return true
		}
		for _, box := range geo.SplitBox(geo.BoxAround(a.Point, meters)) {
			tr.Search(box[0], box[1], visit)
		}
	}

	found := make([]Gap, 0, len(best))
	for _, g := range best {
		found = append(found, g)
	}
	slices.SortFunc(found, func(x, y Gap) int {
		return cmp.Or(
			cmp.Compare(x.Meters, y.Meters),
			cmp.Compare(x.A.Index, y.A.Index),
			cmp.Compare(x.B.Index, y.B.Index),
		)
	})
	return found
}
