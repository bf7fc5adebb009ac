// Package hostroute is the Host-Route Installer (C3): it derives, from a
// topology snapshot and a shortest-path table, the per-switch SPS flow
// entries that forward IPv4 traffic toward each routable host, and
// installs only the deltas against its own shadow of what it last wrote.
package hostroute

import (
	"context"
	"log"
	"net"
	"sync"

	"github.com/ovn-sdncore/sdncore/internal/metrics"
	"github.com/ovn-sdncore/sdncore/internal/ofsvc"
	"github.com/ovn-sdncore/sdncore/internal/routing"
	"github.com/ovn-sdncore/sdncore/internal/topo"
)

// Priority is the fixed priority every SPS entry is installed at.
const Priority uint16 = 100

type shadowKey struct {
	Switch topo.SwitchID
	Host   string
}

// shadowEntry retains the host's IPv4 alongside the installed next hop so
// that a removal (host gone, or no longer reachable) can still build the
// match needed to delete the flow after the host itself has disappeared
// from the topology snapshot.
type shadowEntry struct {
	Port  topo.PortNo
	IPv4  net.IP
	Epoch uint64
}

// Installer is the Host-Route Installer (C3).
type Installer struct {
	tableSPS uint8
	switches ofsvc.SwitchService
	log      *log.Logger
	metrics  *metrics.Registry

	mu     sync.Mutex
	shadow map[shadowKey]shadowEntry
}

// NewInstaller constructs an Installer that writes into table tableSPS.
func NewInstaller(tableSPS uint8, switches ofsvc.SwitchService, ll *log.Logger, m *metrics.Registry) *Installer {
	return &Installer{
		tableSPS: tableSPS,
		switches: switches,
		log:      ll,
		metrics:  m,
		shadow:   make(map[shadowKey]shadowEntry),
	}
}

type desiredEntry struct {
	Port topo.PortNo
	IPv4 net.IP
}

// desiredFor computes the desired (switch, host) -> next-hop mapping for
// every routable host in snap, or for a single host when only is
// non-empty.
func desiredFor(snap topo.Snapshot, rt routing.Table, only string) map[shadowKey]desiredEntry {
	desired := make(map[shadowKey]desiredEntry)

	for key, h := range snap.Hosts {
		if only != "" && key != only {
			continue
		}
		if !h.Routable() {
			continue
		}

		// Terminal rule: at the attachment switch, forward out the
		// attachment port directly.
		desired[shadowKey{Switch: h.Attached.Switch, Host: key}] = desiredEntry{
			Port: h.Attached.Port,
			IPv4: h.IPv4,
		}

		for swID, sw := range snap.Switches {
			if !sw.Connected || swID == h.Attached.Switch {
				continue
			}
			nh, ok := rt.NextHop(swID, h.Attached.Switch)
			if !ok {
				continue
			}
			desired[shadowKey{Switch: swID, Host: key}] = desiredEntry{Port: nh.OutPort, IPv4: h.IPv4}
		}
	}

	return desired
}

// Sweep reconciles every routable host's SPS entries against snap/rt,
// installing and removing only the entries that changed since the last
// sweep. It is invoked whenever the topology changes.
func (ins *Installer) Sweep(ctx context.Context, snap topo.Snapshot, rt routing.Table) {
	desired := desiredFor(snap, rt, "")
	ins.reconcile(ctx, snap.Epoch, desired, "")
}

// HostChanged reconciles only host's SPS entries, the fast path for a
// single endpoint attach/detach/IP change.
func (ins *Installer) HostChanged(ctx context.Context, snap topo.Snapshot, rt routing.Table, host string) {
	desired := desiredFor(snap, rt, host)
	ins.reconcile(ctx, snap.Epoch, desired, host)
}

// reconcile installs every entry in desired that differs from the shadow
// and removes every shadow entry (within scope) no longer in desired.
// scope == "" means every host currently shadowed is in scope (a full
// sweep); otherwise only shadow entries for that host are considered.
func (ins *Installer) reconcile(ctx context.Context, epoch uint64, desired map[shadowKey]desiredEntry, scope string) {
	ins.mu.Lock()
	defer ins.mu.Unlock()

	for key, de := range desired {
		cur, ok := ins.shadow[key]
		if ok && cur.Port == de.Port {
			continue // no-op switch: leave it untouched
		}
		if ok && cur.Epoch > epoch {
			continue // a newer computation already wrote this key
		}

		fm := ofsvc.FlowMod{
			Table:    ins.tableSPS,
			Priority: Priority,
			Match:    []ofsvc.Match{ofsvc.EthType(ofsvc.EtherTypeIPv4), ofsvc.IPv4Dst(de.IPv4)},
			Actions:  []ofsvc.Action{ofsvc.Output(de.Port)},
		}

		// Idempotent replace: clear any existing entry with the same
		// match before installing the new one.
		_ = ins.switches.RemoveFlow(ctx, key.Switch, ins.tableSPS, fm.Match)

		if err := ins.switches.SendFlowMod(ctx, key.Switch, fm); err != nil {
			ins.switchUnavailable(&ofsvc.SwitchUnavailableError{Switch: key.Switch, Op: "installing host route for " + key.Host, Err: err})
			continue // shadow left untouched; next sweep retries
		}

		ins.shadow[key] = shadowEntry{Port: de.Port, IPv4: de.IPv4, Epoch: epoch}
		if ins.metrics != nil {
			ins.metrics.SweepInstalls.Inc()
		}
	}

	for key, se := range ins.shadow {
		if scope != "" && key.Host != scope {
			continue
		}
		if _, stillWanted := desired[key]; stillWanted {
			continue
		}

		match := []ofsvc.Match{ofsvc.EthType(ofsvc.EtherTypeIPv4), ofsvc.IPv4Dst(se.IPv4)}
		if err := ins.switches.RemoveFlow(ctx, key.Switch, ins.tableSPS, match); err != nil {
			ins.switchUnavailable(&ofsvc.SwitchUnavailableError{Switch: key.Switch, Op: "removing host route for " + key.Host, Err: err})
			continue // shadow left untouched; next sweep retries the removal
		}

		delete(ins.shadow, key)
		if ins.metrics != nil {
			ins.metrics.SweepRemovals.Inc()
		}
	}
}

func (ins *Installer) switchUnavailable(err *ofsvc.SwitchUnavailableError) {
	if ins.log != nil {
		ins.log.Printf("hostroute: %s", err)
	}
	if ins.metrics != nil {
		ins.metrics.SwitchUnavailable.Inc()
	}
}
