// Package pipeline owns the two-table flow pipeline every switch runs:
// T_lb (VIP ARP/IP catch rules and LB rewrite rules) ahead of T_sps (the
// Host-Route Installer's per-host forwarding rules), joined by a
// table-miss "goto T_sps" default.
package pipeline

import (
	"context"
	"errors"
	"log"

	"github.com/ovn-sdncore/sdncore/internal/lb"
	"github.com/ovn-sdncore/sdncore/internal/metrics"
	"github.com/ovn-sdncore/sdncore/internal/ofsvc"
	"github.com/ovn-sdncore/sdncore/internal/topo"
)

// Priority ordering for the three rule classes every switch carries:
// rewrite flow rules outrank VIP catch rules, which outrank the table-miss
// default.
const (
	PriorityFlow    uint16 = 300
	PriorityVIP     uint16 = 200
	PriorityDefault uint16 = 0
)

// IdleTimeout is the idle timeout LB rewrite rules carry so stale flows
// self-evict.
const IdleTimeout uint16 = 20

// ErrTablesEqual is returned by NewManager when T_lb and T_sps are
// configured to the same table id. They must differ; like the missing
// `table` key itself, this is treated as a fatal module-init condition
// rather than something the core can limp along with.
var ErrTablesEqual = errors.New("pipeline: lb and sps table ids must differ")

// Manager is the Flow Pipeline Manager (C6). It implements
// ofsvc.RoutingOracle so the LB edge handler can emit "goto T_sps"
// without importing this package.
type Manager struct {
	tableLB  uint8
	tableSPS uint8

	switches ofsvc.SwitchService
	registry *lb.Registry
	log      *log.Logger
}

var _ ofsvc.RoutingOracle = (*Manager)(nil)

// NewManager constructs a Manager. tableLB and tableSPS must differ.
func NewManager(tableLB, tableSPS uint8, registry *lb.Registry, switches ofsvc.SwitchService, ll *log.Logger) (*Manager, error) {
	if tableLB == tableSPS {
		return nil, ErrTablesEqual
	}
	return &Manager{
		tableLB:  tableLB,
		tableSPS: tableSPS,
		switches: switches,
		registry: registry,
		log:      ll,
	}, nil
}

// LBTable returns T_lb's table id.
func (m *Manager) LBTable() uint8 { return m.tableLB }

// SPSTable returns T_sps's table id, implementing ofsvc.RoutingOracle.
func (m *Manager) SPSTable() uint8 { return m.tableSPS }

// OnSwitchUp installs, for every configured VIP, the ARP and IPv4 catch
// rules that punt matching traffic to the controller, followed by the
// table-miss default that sends everything else on to T_sps. Called once
// per switch-added event.
func (m *Manager) OnSwitchUp(ctx context.Context, sw topo.SwitchID, metricsReg *metrics.Registry) {
	for _, inst := range m.registry.All() {
		arpCatch := ofsvc.FlowMod{
			Table:    m.tableLB,
			Priority: PriorityVIP,
			Match: []ofsvc.Match{
				ofsvc.EthType(ofsvc.EtherTypeARP),
				ofsvc.ARPTargetProtocolAddress(inst.VIP),
			},
			Actions: []ofsvc.Action{ofsvc.ToController()},
		}
		ipCatch := ofsvc.FlowMod{
			Table:    m.tableLB,
			Priority: PriorityVIP,
			Match: []ofsvc.Match{
				ofsvc.EthType(ofsvc.EtherTypeIPv4),
				ofsvc.IPv4Dst(inst.VIP),
			},
			Actions: []ofsvc.Action{ofsvc.ToController()},
		}

		m.install(ctx, sw, arpCatch, metricsReg)
		m.install(ctx, sw, ipCatch, metricsReg)
	}

	defaultGoto := ofsvc.FlowMod{
		Table:    m.tableLB,
		Priority: PriorityDefault,
		Actions:  []ofsvc.Action{ofsvc.GotoTable(m.tableSPS)},
	}
	m.install(ctx, sw, defaultGoto, metricsReg)
}

func (m *Manager) install(ctx context.Context, sw topo.SwitchID, fm ofsvc.FlowMod, metricsReg *metrics.Registry) {
	if err := m.switches.SendFlowMod(ctx, sw, fm); err != nil {
		if m.log != nil {
			m.log.Printf("pipeline: switch %d unavailable installing %s: %v", sw, fm, err)
		}
		if metricsReg != nil {
			metricsReg.SwitchUnavailable.Inc()
		}
		return
	}
	if m.log != nil {
		m.log.Printf("pipeline: installed on switch %d: %s", sw, fm)
	}
}
