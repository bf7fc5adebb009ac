package routing

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ovn-sdncore/sdncore/internal/topo"
)

// linear3 builds a 3-switch line: s1-s2-s3, (s1:2<->s2:1), (s2:2<->s3:1).
func linear3() *topo.Store {
	s := topo.NewStore()
	s.ApplySwitch(1, true)
	s.ApplySwitch(2, true)
	s.ApplySwitch(3, true)
	s.ApplyLink(1, 2, 2, 1, true)
	s.ApplyLink(2, 2, 3, 1, true)
	return s
}

func TestComputeLinearTopology(t *testing.T) {
	store := linear3()
	table := Compute(store.Snapshot())

	nh, ok := table.NextHop(1, 3)
	if !ok || nh.OutPort != 2 {
		t.Fatalf("s1->s3: got (%v,%v), want port 2", nh, ok)
	}
	nh, ok = table.NextHop(2, 3)
	if !ok || nh.OutPort != 2 {
		t.Fatalf("s2->s3: got (%v,%v), want port 2", nh, ok)
	}
	nh, ok = table.NextHop(3, 1)
	if !ok || nh.OutPort != 1 {
		t.Fatalf("s3->s1: got (%v,%v), want port 1", nh, ok)
	}
}

func TestComputeLinkBreakSplitsComponent(t *testing.T) {
	store := linear3()
	store.ApplyLink(2, 2, 3, 1, false)

	table := Compute(store.Snapshot())

	if _, ok := table.NextHop(1, 3); ok {
		t.Fatalf("s1->s3 should be unreachable after the component split")
	}
	if _, ok := table.NextHop(3, 1); ok {
		t.Fatalf("s3->s1 should be unreachable after the component split")
	}
	// s1->s2 must still work; the split only removed the s2-s3 edge.
	if nh, ok := table.NextHop(1, 2); !ok || nh.OutPort != 2 {
		t.Fatalf("s1->s2: got (%v,%v), want port 2", nh, ok)
	}
}

func TestComputeTieBreakPrefersSmallerNeighborID(t *testing.T) {
	// s1 connects directly to both s2 (port 2) and s3 (port 3); s2 and s3
	// both connect to s4. Two equally short paths from s1 to s4 exist via
	// s2 and via s3 -- the smaller neighbor id (s2) must win.
	s := topo.NewStore()
	for _, id := range []topo.SwitchID{1, 2, 3, 4} {
		s.ApplySwitch(id, true)
	}
	s.ApplyLink(1, 2, 2, 1, true)
	s.ApplyLink(1, 3, 3, 1, true)
	s.ApplyLink(2, 2, 4, 1, true)
	s.ApplyLink(3, 2, 4, 2, true)

	table := Compute(s.Snapshot())

	nh, ok := table.NextHop(1, 4)
	if !ok {
		t.Fatalf("s1->s4 should be reachable")
	}
	if nh.OutPort != 2 {
		t.Fatalf("expected tie-break to prefer the path via s2 (port 2), got port %d", nh.OutPort)
	}
}

func TestComputeLinearTopologyFullTable(t *testing.T) {
	store := linear3()
	table := Compute(store.Snapshot())

	want := map[routeKey]NextHop{
		{Src: 1, Dst: 2}: {OutPort: 2},
		{Src: 1, Dst: 3}: {OutPort: 2},
		{Src: 2, Dst: 1}: {OutPort: 1},
		{Src: 2, Dst: 3}: {OutPort: 2},
		{Src: 3, Dst: 1}: {OutPort: 1},
		{Src: 3, Dst: 2}: {OutPort: 1},
	}
	if diff := cmp.Diff(want, table.entries); diff != "" {
		t.Fatalf("route table mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeIgnoresDisconnectedSwitch(t *testing.T) {
	store := linear3()
	store.ApplySwitch(3, false)

	table := Compute(store.Snapshot())
	if _, ok := table.NextHop(1, 3); ok {
		t.Fatalf("removed switch must not appear as a reachable destination")
	}
}
