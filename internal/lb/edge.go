package lb

import (
	"context"
	"log"

	"github.com/ovn-sdncore/sdncore/internal/metrics"
	"github.com/ovn-sdncore/sdncore/internal/netpkt"
	"github.com/ovn-sdncore/sdncore/internal/ofsvc"
)

// RewritePriority is the priority every LB-installed rewrite rule carries,
// above the VIP catch rules and the SPS default.
const RewritePriority uint16 = 300

// RewriteIdleTimeout is the idle timeout a rewrite rule pair carries so a
// finished or abandoned flow self-evicts instead of living forever.
const RewriteIdleTimeout uint16 = 20

// EdgeHandler is the LB Edge Handler (C5): it answers ARP for configured
// VIPs, dispatches a VIP's first SYN to a backend by installing a rewrite
// rule pair, and resets stray non-SYN TCP segments sent to a VIP with no
// established flow.
type EdgeHandler struct {
	registry *Registry
	devices  ofsvc.DeviceService
	switches ofsvc.SwitchService
	oracle   ofsvc.RoutingOracle
	tableLB  uint8
	log      *log.Logger
	metrics  *metrics.Registry
}

// NewEdgeHandler constructs an EdgeHandler. tableLB is the table its
// rewrite rule pairs are installed into.
func NewEdgeHandler(tableLB uint8, registry *Registry, devices ofsvc.DeviceService, switches ofsvc.SwitchService, oracle ofsvc.RoutingOracle, ll *log.Logger, m *metrics.Registry) *EdgeHandler {
	return &EdgeHandler{
		registry: registry,
		devices:  devices,
		switches: switches,
		oracle:   oracle,
		tableLB:  tableLB,
		log:      ll,
		metrics:  m,
	}
}

// VIPCount returns the number of configured VIP instances, for a status
// view; it does not reflect flow or backend-selection activity.
func (h *EdgeHandler) VIPCount() int {
	return len(h.registry.All())
}

// Handle processes one packet-in punted to the controller by a VIP catch
// rule. A decode failure or any input that doesn't match a VIP case is
// dropped silently, with ProtocolViolations counting the decode failures.
func (h *EdgeHandler) Handle(ctx context.Context, pkt ofsvc.PacketIn) error {
	eth, err := netpkt.DecodeEthernet(pkt.Data)
	if err != nil {
		h.violation("switch %d port %d: %v", pkt.Switch, pkt.InPort, err)
		return nil
	}

	switch eth.EtherType {
	case netpkt.EtherTypeARP:
		return h.handleARP(ctx, pkt, eth)
	case netpkt.EtherTypeIPv4:
		return h.handleIPv4(ctx, pkt, eth)
	default:
		return nil // not an ARP/IPv4 frame a VIP catch rule would ever punt
	}
}

func (h *EdgeHandler) handleARP(ctx context.Context, pkt ofsvc.PacketIn, eth netpkt.Ethernet) error {
	arp, err := netpkt.DecodeARP(eth.Payload)
	if err != nil {
		h.violation("switch %d port %d: %v", pkt.Switch, pkt.InPort, err)
		return nil
	}
	if arp.Opcode != netpkt.ARPRequest {
		return nil
	}

	inst, ok := h.registry.Lookup(arp.TargetProto)
	if !ok {
		return nil // request not for a configured VIP
	}

	reply := netpkt.EncodeARPReply(inst.VMAC, inst.VIP, arp.SenderHW, arp.SenderProto)
	if err := h.switches.SendPacketOut(ctx, pkt.Switch, pkt.InPort, reply); err != nil {
		h.switchUnavailable(&ofsvc.SwitchUnavailableError{Switch: pkt.Switch, Op: "sending arp reply", Err: err})
	}
	return nil
}

func (h *EdgeHandler) handleIPv4(ctx context.Context, pkt ofsvc.PacketIn, eth netpkt.Ethernet) error {
	ip, err := netpkt.DecodeIPv4(eth.Payload)
	if err != nil {
		h.violation("switch %d port %d: %v", pkt.Switch, pkt.InPort, err)
		return nil
	}
	if ip.Protocol != netpkt.ProtocolTCP {
		return nil // only TCP is load-balanced; anything else to a VIP is ignored
	}

	inst, ok := h.registry.Lookup(ip.Dst)
	if !ok {
		return nil
	}

	tcp, err := netpkt.DecodeTCP(ip.Payload)
	if err != nil {
		h.violation("switch %d port %d: %v", pkt.Switch, pkt.InPort, err)
		return nil
	}

	if tcp.HasFlag(netpkt.TCPFlagSYN) {
		return h.dispatchSYN(ctx, pkt, eth, ip, tcp, inst)
	}

	// A non-SYN segment to a VIP with no flow already routing it past the
	// rewrite table means the backend connection it belonged to is gone;
	// reset it rather than let it hang.
	var seq uint32
	if tcp.HasFlag(netpkt.TCPFlagACK) {
		seq = tcp.Ack
	}
	reset := netpkt.EncodeTCPReset(inst.VMAC, eth.Src, inst.VIP, ip.Src, tcp.DstPort, tcp.SrcPort, seq, tcp.Seq+uint32(len(tcp.Payload)))
	if err := h.switches.SendPacketOut(ctx, pkt.Switch, pkt.InPort, reset); err != nil {
		h.switchUnavailable(&ofsvc.SwitchUnavailableError{Switch: pkt.Switch, Op: "sending tcp reset", Err: err})
	}
	return nil
}

func (h *EdgeHandler) dispatchSYN(ctx context.Context, pkt ofsvc.PacketIn, eth netpkt.Ethernet, ip netpkt.IPv4, tcp netpkt.TCP, inst *VIPInstance) error {
	backend := inst.NextBackend()

	devs := h.devices.Devices(ofsvc.DeviceFilter{IPv4: backend})
	if len(devs) == 0 {
		h.resolutionMiss(&ResolutionMissError{VIP: inst.VIP, Backend: backend})
		return nil
	}
	backendMAC := devs[0].MAC

	if h.metrics != nil {
		h.metrics.BackendSelections.WithLabelValues(inst.VIP.String()).Inc()
	}

	sps := h.oracle.SPSTable()

	// Inbound: client -> VIP becomes client -> backend.
	inbound := ofsvc.FlowMod{
		Table:    h.tableLB,
		Priority: RewritePriority,
		Match: []ofsvc.Match{
			ofsvc.EthType(ofsvc.EtherTypeIPv4),
			ofsvc.IPv4Src(ip.Src),
			ofsvc.IPv4Dst(inst.VIP),
			ofsvc.TCPSrc(tcp.SrcPort),
			ofsvc.TCPDst(tcp.DstPort),
		},
		Actions: []ofsvc.Action{
			ofsvc.SetEthDst(backendMAC),
			ofsvc.SetIPv4Dst(backend),
			ofsvc.GotoTable(sps),
		},
		IdleTimeout: RewriteIdleTimeout,
	}

	// Outbound: backend -> client becomes VIP -> client, so the client
	// never sees the backend's real address.
	outbound := ofsvc.FlowMod{
		Table:    h.tableLB,
		Priority: RewritePriority,
		Match: []ofsvc.Match{
			ofsvc.EthType(ofsvc.EtherTypeIPv4),
			ofsvc.IPv4Src(backend),
			ofsvc.IPv4Dst(ip.Src),
			ofsvc.TCPSrc(tcp.DstPort),
			ofsvc.TCPDst(tcp.SrcPort),
		},
		Actions: []ofsvc.Action{
			ofsvc.SetEthSrc(inst.VMAC),
			ofsvc.SetIPv4Src(inst.VIP),
			ofsvc.GotoTable(sps),
		},
		IdleTimeout: RewriteIdleTimeout,
	}

	if err := h.switches.SendFlowMod(ctx, pkt.Switch, inbound); err != nil {
		h.switchUnavailable(&ofsvc.SwitchUnavailableError{Switch: pkt.Switch, Op: "installing inbound rewrite", Err: err})
		return nil
	}
	if err := h.switches.SendFlowMod(ctx, pkt.Switch, outbound); err != nil {
		h.switchUnavailable(&ofsvc.SwitchUnavailableError{Switch: pkt.Switch, Op: "installing outbound rewrite", Err: err})
		return nil
	}
	return nil
}

func (h *EdgeHandler) violation(format string, args ...interface{}) {
	if h.log != nil {
		h.log.Printf("lb: dropping malformed packet: "+format, args...)
	}
	if h.metrics != nil {
		h.metrics.ProtocolViolations.Inc()
	}
}

func (h *EdgeHandler) resolutionMiss(err *ResolutionMissError) {
	if h.log != nil {
		h.log.Printf("lb: %s", err)
	}
	if h.metrics != nil {
		h.metrics.ResolutionMisses.Inc()
	}
}

func (h *EdgeHandler) switchUnavailable(err *ofsvc.SwitchUnavailableError) {
	if h.log != nil {
		h.log.Printf("lb: %s", err)
	}
	if h.metrics != nil {
		h.metrics.SwitchUnavailable.Inc()
	}
}
