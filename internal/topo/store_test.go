package topo

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplySwitchIdempotent(t *testing.T) {
	s := NewStore()

	if cs := s.ApplySwitch(1, true); cs.Kind != ChangeTopology {
		t.Fatalf("first switch-up: got %v, want ChangeTopology", cs)
	}
	if cs := s.ApplySwitch(1, true); cs.Kind != ChangeNone {
		t.Fatalf("repeated switch-up: got %v, want ChangeNone", cs)
	}

	epoch := s.Epoch()
	if cs := s.ApplySwitch(1, true); cs.Kind != ChangeNone || s.Epoch() != epoch {
		t.Fatalf("idempotent switch-up must not advance epoch")
	}
}

func TestApplySwitchDownPrunesLinks(t *testing.T) {
	s := NewStore()
	s.ApplySwitch(1, true)
	s.ApplySwitch(2, true)
	s.ApplyLink(1, 1, 2, 1, true)

	s.ApplySwitch(1, false)

	snap := s.Snapshot()
	if len(snap.Links) != 0 {
		t.Fatalf("expected all half-links touching switch 1 to be pruned, got %v", snap.Links)
	}
	if _, ok := snap.Switches[1]; ok {
		t.Fatalf("switch 1 should have been removed")
	}
}

func TestApplyLinkCoalescesParallelLinks(t *testing.T) {
	s := NewStore()
	s.ApplySwitch(1, true)
	s.ApplySwitch(2, true)

	s.ApplyLink(1, 1, 2, 1, true)
	s.ApplyLink(1, 2, 2, 2, true) // parallel link between the same pair

	snap := s.Snapshot()
	want := Link{Src: 1, SrcPort: 2, Dst: 2, DstPort: 2}
	got := snap.Links[LinkKey{Src: 1, Dst: 2}]
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("coalesced link mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyLinkDownRemovesBothHalves(t *testing.T) {
	s := NewStore()
	s.ApplySwitch(1, true)
	s.ApplySwitch(2, true)
	s.ApplyLink(1, 1, 2, 1, true)

	cs := s.ApplyLink(1, 1, 2, 1, false)
	if cs.Kind != ChangeTopology {
		t.Fatalf("link-down: got %v, want ChangeTopology", cs)
	}

	snap := s.Snapshot()
	if _, ok := snap.Links[LinkKey{Src: 1, Dst: 2}]; ok {
		t.Fatalf("forward half-link should be gone")
	}
	if _, ok := snap.Links[LinkKey{Src: 2, Dst: 1}]; ok {
		t.Fatalf("reverse half-link should be gone")
	}
}

func TestApplyHostUnroutableUntilIPResolved(t *testing.T) {
	s := NewStore()
	mac, _ := net.ParseMAC("00:11:22:33:44:55")

	s.ApplyHost("dev1", mac, nil, nil, true)
	snap := s.Snapshot()
	if snap.Hosts["dev1"].Routable() {
		t.Fatalf("host with no ipv4/attachment should not be routable")
	}

	cs := s.ApplyHost("dev1", mac, net.IPv4(10, 0, 0, 1), &Attachment{Switch: 1, Port: 1}, true)
	if cs.Kind != ChangeHost || cs.Host != "dev1" {
		t.Fatalf("expected ChangeHost(dev1), got %v", cs)
	}
	if !s.Snapshot().Hosts["dev1"].Routable() {
		t.Fatalf("host should be routable once ipv4 and attachment are known")
	}
}

func TestApplyHostIdempotent(t *testing.T) {
	s := NewStore()
	mac, _ := net.ParseMAC("00:11:22:33:44:55")
	att := &Attachment{Switch: 1, Port: 1}

	s.ApplyHost("dev1", mac, net.IPv4(10, 0, 0, 1), att, true)
	epoch := s.Epoch()

	cs := s.ApplyHost("dev1", mac, net.IPv4(10, 0, 0, 1), &Attachment{Switch: 1, Port: 1}, true)
	if cs.Kind != ChangeNone {
		t.Fatalf("repeated identical host add: got %v, want ChangeNone", cs)
	}
	if s.Epoch() != epoch {
		t.Fatalf("idempotent host add must not advance epoch")
	}
}

func TestSnapshotValidateFlagsLinkToUnknownSwitch(t *testing.T) {
	s := NewStore()
	s.ApplySwitch(1, true)
	s.ApplyLink(1, 1, 2, 1, true) // switch 2 never came up

	errs := s.Snapshot().Validate()
	if len(errs) == 0 {
		t.Fatalf("expected at least one TopologyInconsistentError for switch 2")
	}
	found := false
	for _, e := range errs {
		if e.Switch == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error naming switch 2, got %v", errs)
	}
}

func TestSnapshotValidateCleanTopologyHasNoErrors(t *testing.T) {
	s := NewStore()
	s.ApplySwitch(1, true)
	s.ApplySwitch(2, true)
	s.ApplyLink(1, 1, 2, 1, true)
	mac, _ := net.ParseMAC("00:11:22:33:44:55")
	s.ApplyHost("dev1", mac, net.IPv4(10, 0, 0, 1), &Attachment{Switch: 1, Port: 1}, true)

	if errs := s.Snapshot().Validate(); len(errs) != 0 {
		t.Fatalf("expected no inconsistencies, got %v", errs)
	}
}

func TestApplyHostRemove(t *testing.T) {
	s := NewStore()
	mac, _ := net.ParseMAC("00:11:22:33:44:55")
	s.ApplyHost("dev1", mac, net.IPv4(10, 0, 0, 1), &Attachment{Switch: 1, Port: 1}, true)

	cs := s.ApplyHost("dev1", nil, nil, nil, false)
	if cs.Kind != ChangeHost || cs.Host != "dev1" {
		t.Fatalf("expected ChangeHost(dev1) on removal, got %v", cs)
	}
	if _, ok := s.Snapshot().Hosts["dev1"]; ok {
		t.Fatalf("host should be removed from the snapshot")
	}
}
