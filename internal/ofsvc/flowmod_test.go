package ofsvc

import (
	"net"
	"testing"
)

func TestMatchKeyOrderIndependent(t *testing.T) {
	a := []Match{EthType(EtherTypeIPv4), IPv4Dst(net.IPv4(10, 0, 0, 1))}
	b := []Match{IPv4Dst(net.IPv4(10, 0, 0, 1)), EthType(EtherTypeIPv4)}

	if MatchKey(a) != MatchKey(b) {
		t.Fatalf("MatchKey should not depend on slice order: %q vs %q", MatchKey(a), MatchKey(b))
	}
}

func TestFlowModKeyIgnoresActionsAndPriority(t *testing.T) {
	base := []Match{EthType(EtherTypeIPv4), IPv4Dst(net.IPv4(10, 0, 0, 1))}

	f1 := FlowMod{Table: 1, Priority: 100, Match: base, Actions: []Action{Output(1)}}
	f2 := FlowMod{Table: 1, Priority: 200, Match: base, Actions: []Action{Output(2)}}

	if f1.Key() != f2.Key() {
		t.Fatalf("flows with identical (table, match) must share a Key regardless of priority/actions")
	}

	f3 := FlowMod{Table: 2, Priority: 100, Match: base}
	if f1.Key() == f3.Key() {
		t.Fatalf("flows in different tables must not share a Key")
	}
}
