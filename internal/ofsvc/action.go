package ofsvc

import (
	"fmt"
	"net"

	"github.com/ovn-sdncore/sdncore/internal/topo"
)

// An Action is one step in a flow entry's action list, applied in order.
type Action interface {
	String() string
}

type outputAction topo.PortNo

func (a outputAction) String() string { return fmt.Sprintf("output:%d", topo.PortNo(a)) }

// Output sends the packet out the given switch port.
func Output(port topo.PortNo) Action { return outputAction(port) }

type controllerAction struct{}

func (controllerAction) String() string { return "controller" }

// ToController punts the packet to the controller (the origin of every LB
// packet-in).
func ToController() Action { return controllerAction{} }

type gotoTableAction uint8

func (a gotoTableAction) String() string { return fmt.Sprintf("goto:%d", uint8(a)) }

// GotoTable advances the packet to the given table in the pipeline. Every
// LB rewrite rule and the LB default rule use this to hand the packet to
// the SPS table.
func GotoTable(table uint8) Action { return gotoTableAction(table) }

type setEthAction struct {
	dst bool
	mac net.HardwareAddr
}

func (a setEthAction) String() string {
	if a.dst {
		return fmt.Sprintf("set_eth_dst:%s", a.mac)
	}
	return fmt.Sprintf("set_eth_src:%s", a.mac)
}

// SetEthSrc rewrites the Ethernet source address.
func SetEthSrc(mac net.HardwareAddr) Action { return setEthAction{dst: false, mac: mac} }

// SetEthDst rewrites the Ethernet destination address.
func SetEthDst(mac net.HardwareAddr) Action { return setEthAction{dst: true, mac: mac} }

type setIPv4Action struct {
	dst bool
	ip  net.IP
}

func (a setIPv4Action) String() string {
	if a.dst {
		return fmt.Sprintf("set_ipv4_dst:%s", a.ip)
	}
	return fmt.Sprintf("set_ipv4_src:%s", a.ip)
}

// SetIPv4Src rewrites the IPv4 source address.
func SetIPv4Src(ip net.IP) Action { return setIPv4Action{dst: false, ip: ip} }

// SetIPv4Dst rewrites the IPv4 destination address.
func SetIPv4Dst(ip net.IP) Action { return setIPv4Action{dst: true, ip: ip} }
