package gaps

import (
	"testing"

	"github.com/Zverik/join-roads/pkg/geo"
	"github.com/Zverik/join-roads/pkg/merge"
)

func road(name string, start, end int64, ids ...int64) merge.Road {
	r := merge.Road{Key: merge.Key{Name: name}, Start: start, End: end}
	for _, id := range ids {
		r.Links = append(r.Links, merge.Link{ID: id})
	}
	return r
}

// About 11 m per 0.0001 degree of latitude.
var coords = map[int64]geo.Point{
	1: {Lat: 55.0000, Lon: 37.0},
	2: {Lat: 55.0010, Lon: 37.0},
	3: {Lat: 55.0011, Lon: 37.0}, // ~11 m from node 2
	4: {Lat: 55.0020, Lon: 37.0},
	5: {Lat: 55.0020, Lon: 37.0}, // same spot as node 4
	6: {Lat: 55.0100, Lon: 37.0},
	7: {Lat: 55.0500, Lon: 37.0},
}

func TestFind(t *testing.T) {
	roads := []merge.Road{
		road("Main St", 1, 2, 10, 11),
		road("Main St", 3, 4, 12),
		road("Main St", 5, 6, 13, 14),
		road("Other St", 2, 7, 20), // same node as Main St but other key
	}

	found := Find(roads, coords, 20)
	if len(found) != 2 {
		t.Fatalf("Find() = %d gaps, want 2: %+v", len(found), found)
	}

	// Coincident nodes 4 and 5 come first.
	if found[0].A.Node != 4 || found[0].B.Node != 5 || found[0].Meters != 0 {
		t.Errorf("found[0] = nodes %d-%d %.1f m, want 4-5 0 m", found[0].A.Node, found[0].B.Node, found[0].Meters)
	}
	if found[1].A.Node != 2 || found[1].B.Node != 3 {
		t.Errorf("found[1] = nodes %d-%d, want 2-3", found[1].A.Node, found[1].B.Node)
	}
	if m := found[1].Meters; m < 10 || m > 12 {
		t.Errorf("found[1].Meters = %.2f, want ~11", m)
	}
	if found[1].A.Index != 0 || found[1].B.Index != 1 {
		t.Errorf("found[1] indices = %d,%d, want 0,1", found[1].A.Index, found[1].B.Index)
	}
}

func TestFindOutOfRange(t *testing.T) {
	roads := []merge.Road{
		road("Main St", 1, 2, 10),
		road("Main St", 3, 4, 11),
	}
	if found := Find(roads, coords, 5); len(found) != 0 {
		t.Errorf("Find() = %+v, want none within 5 m", found)
	}
}

func TestFindSkipsClosedAndUnlocated(t *testing.T) {
	closed := road("Main St", 2, 2, 10, 11, 12)
	closed.Closed = true
	roads := []merge.Road{
		closed,
		road("Main St", 3, 99, 13), // node 99 has no coordinates
	}

	if found := Find(roads, coords, 50); len(found) != 0 {
		t.Errorf("Find() = %+v, want none", found)
	}
}

func TestEndpoints(t *testing.T) {
	closed := road("Ring", 8, 8, 1, 2)
	closed.Closed = true
	ids := Endpoints([]merge.Road{road("Main St", 1, 2, 10), road("Main St", 3, 4, 11), closed})

	if len(ids) != 4 {
		t.Fatalf("Endpoints() = %d ids, want 4", len(ids))
	}
	for _, id := range []int64{1, 2, 3, 4} {
		if _, ok := ids[id]; !ok {
			t.Errorf("node %d missing", id)
		}
	}
}

func TestFindAcrossAntimeridian(t *testing.T) {
	// 0.0002 degrees of longitude on the equator is about 22 m.
	coords := map[int64]geo.Point{
		1: {Lat: 0, Lon: 179.9},
		2: {Lat: 0, Lon: 179.9999},
		3: {Lat: 0, Lon: -179.9999},
		4: {Lat: 0, Lon: -179.9},
	}
	roads := []merge.Road{
		road("Date Line Rd", 1, 2, 10, 11),
		road("Date Line Rd", 3, 4, 12, 13),
	}

	found := Find(roads, coords, 50)
	if len(found) != 1 {
		t.Fatalf("Find() = %d gaps, want 1: %+v", len(found), found)
	}
	if found[0].A.Node != 2 || found[0].B.Node != 3 {
		t.Errorf("gap nodes = %d-%d, want 2-3", found[0].A.Node, found[0].B.Node)
	}
	if m := found[0].Meters; m < 20 || m > 25 {
		t.Errorf("Meters = %.2f, want ~22", m)
	}
}
