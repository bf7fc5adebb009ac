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

// Package topo is the topology store (switches, links, hosts). It is the
// single source of truth for the shortest-path engine and the host-route
// installer; every mutation flows through Store and every read goes through
// a Snapshot.
package topo

import "net"

// A SwitchID is an opaque identifier for a switch in the fabric.
type SwitchID uint64

// A PortNo is a switch port number.
type PortNo uint16

// An Attachment names the switch port a host is directly connected to.
type Attachment struct {
	Switch SwitchID
	Port   PortNo
}

// A Switch is a fabric switch and its connectivity state.
type Switch struct {
	ID        SwitchID
	Connected bool
}

// A LinkKey identifies a directed half-link by its endpoints.
type LinkKey struct {
	Src SwitchID
	Dst SwitchID
}

// A Link is one directed half of an undirected link between two switches.
// Links are stored in pairs: a->b and b->a are separate half-links that are
// added and removed together.
type Link struct {
	Src     SwitchID
	SrcPort PortNo
	Dst     SwitchID
	DstPort PortNo
}

// A Host is an end station known to the controller. A Host is routable iff
// both IPv4 and Attached are set.
type Host struct {
	DeviceKey string
	MAC       net.HardwareAddr
	IPv4      net.IP
	Attached  *Attachment
}

// Routable reports whether h has both a resolved IPv4 address and a known
// attachment point, the precondition for installing SPS forwarding rules.
func (h Host) Routable() bool {
	return h.IPv4 != nil && h.Attached != nil
}

// equal reports whether two hosts carry the same routing-relevant state.
// DeviceKey is assumed equal by the caller (it is the map key).
func (h Host) equal(o Host) bool {
	if h.MAC.String() != o.MAC.String() {
		return false
	}
	if !h.IPv4.Equal(o.IPv4) {
		return false
	}
	switch {
	case h.Attached == nil && o.Attached == nil:
		return true
	case h.Attached == nil || o.Attached == nil:
		return false
	default:
		return *h.Attached == *o.Attached
	}
}
