// Copyright 2017 DigitalOcean.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ofsvc

import (
	"context"
	"fmt"
	"net"

	"github.com/ovn-sdncore/sdncore/internal/topo"
)

// A SwitchUnavailableError reports that a switch command could not be
// delivered because the target switch has no open control connection. It
// wraps whatever transport error the SwitchService implementation
// returned; callers log it and leave their shadow state untouched so the
// next reconciliation pass retries.
type SwitchUnavailableError struct {
	Switch topo.SwitchID
	Op     string
	Err    error
}

func (e *SwitchUnavailableError) Error() string {
	return fmt.Sprintf("switch %d unavailable for %s: %s", e.Switch, e.Op, e.Err)
}

func (e *SwitchUnavailableError) Unwrap() error { return e.Err }

// SwitchWriter is the mutating half of the switch command surface: install
// or remove flow entries and emit packets from a switch. Segregated from
// SwitchReader the same way a read-only/read-write split separates a
// datapath's inspection calls from its mutating ones.
type SwitchWriter interface {
	// SendFlowMod installs fm on switch sw. SwitchUnavailable (sw not
	// connected) is reported as an error; the caller logs it and leaves
	// its shadow state untouched so the next sweep retries.
	SendFlowMod(ctx context.Context, sw topo.SwitchID, fm FlowMod) error
	// SendPacketOut emits data out of port on switch sw.
	SendPacketOut(ctx context.Context, sw topo.SwitchID, port topo.PortNo, data []byte) error
	// RemoveFlow deletes any flow entry in table matching match exactly,
	// addressed by FlowMod.Key semantics.
	RemoveFlow(ctx context.Context, sw topo.SwitchID, table uint8, match []Match) error
}

// SwitchReader is the read-only half of the switch command surface.
type SwitchReader interface {
	// Connected reports whether sw currently has an open control
	// connection.
	Connected(sw topo.SwitchID) bool
}

// SwitchService is the full switch command surface consumed from the host
// framework.
type SwitchService interface {
	SwitchReader
	SwitchWriter
}

// A DeviceFilter narrows a DeviceService.Devices query. A nil/zero field
// means "don't filter on this".
type DeviceFilter struct {
	MAC    net.HardwareAddr
	IPv4   net.IP
	VLAN   *uint16
	Switch *topo.SwitchID
	Port   *topo.PortNo
}

// A Device is one entry returned by DeviceService.Devices.
type Device struct {
	MAC  net.HardwareAddr
	IPv4 net.IP
}

// DeviceService resolves device identity, used by the LB edge handler to
// turn a backend IPv4 address into its MAC address.
type DeviceService interface {
	Devices(filter DeviceFilter) []Device
}

// A LinkView is one undirected link as reported by LinkService. app.New
// uses it, if a LinkService is supplied, to bootstrap the topology store
// before returning; incremental updates after that arrive as typed events
// through the dispatcher.
type LinkView struct {
	A     topo.SwitchID
	APort topo.PortNo
	B     topo.SwitchID
	BPort topo.PortNo
}

// LinkService exposes the current set of links known to link discovery.
type LinkService interface {
	Links() []LinkView
}

// A PacketIn is one packet-in event, typed as the ethernet frame bytes the
// reporting switch saw plus where it saw them.
type PacketIn struct {
	Switch topo.SwitchID
	InPort topo.PortNo
	Data   []byte
}

// RoutingOracle exposes the SPS table id so that the LB pipeline can emit
// "goto T_sps" and so that external callers may layer further tables above
// this core.
type RoutingOracle interface {
	SPSTable() uint8
}

// A StatusView is a read-only snapshot of the core's operational state,
// for an operator inspecting the module without driving traffic through
// it. It carries no secrets and opens no network listener of its own.
type StatusView struct {
	Epoch             uint64
	Switches          int
	ConnectedSwitches int
	Links             int
	Hosts             int
	RoutableHosts     int
	VIPs              int
}
