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

// Package ofsvc defines the command surface and typed event inputs the
// core consumes from the host framework: switch, device and link
// services, the packet-in stream, and the flow-table vocabulary
// (Match/Action/FlowMod) used to describe what gets programmed into a
// switch. Nothing in this package talks to a network; it is the contract
// the core programs against.
package ofsvc

import (
	"fmt"
	"net"
)

// A Field names one matchable packet header field.
type Field string

// Field constants recognized by the pipeline. Only the fields the SPS and
// LB tables actually match on are defined; this is not a general OpenFlow
// match vocabulary.
const (
	FieldEthType Field = "eth_type"
	FieldIPv4Src Field = "ipv4_src"
	FieldIPv4Dst Field = "ipv4_dst"
	FieldARPTpa  Field = "arp_tpa"
	FieldTCPSrc  Field = "tcp_src"
	FieldTCPDst  Field = "tcp_dst"
)

// EtherType values used in Match/EthType.
const (
	EtherTypeIPv4 uint16 = 0x0800
	EtherTypeARP  uint16 = 0x0806
)

// A Match is one predicate in a flow entry's match set. The core never
// needs to parse matches back out of text (FlowEntry is a conceptual
// shadow, not something persisted and re-read) so Match only needs to
// marshal to a stable, comparable string.
type Match interface {
	Field() Field
	String() string
}

type ethTypeMatch uint16

func (m ethTypeMatch) Field() Field  { return FieldEthType }
func (m ethTypeMatch) String() string { return fmt.Sprintf("eth_type=0x%04x", uint16(m)) }

// EthType matches on the Ethernet type field.
func EthType(t uint16) Match { return ethTypeMatch(t) }

type ipv4Match struct {
	field Field
	ip    net.IP
}

func (m ipv4Match) Field() Field   { return m.field }
func (m ipv4Match) String() string { return fmt.Sprintf("%s=%s", m.field, m.ip.String()) }

// IPv4Src matches on the IPv4 source address.
func IPv4Src(ip net.IP) Match { return ipv4Match{field: FieldIPv4Src, ip: ip} }

// IPv4Dst matches on the IPv4 destination address.
func IPv4Dst(ip net.IP) Match { return ipv4Match{field: FieldIPv4Dst, ip: ip} }

// ARPTargetProtocolAddress matches on the ARP target protocol address
// (arp_tpa).
func ARPTargetProtocolAddress(ip net.IP) Match { return ipv4Match{field: FieldARPTpa, ip: ip} }

type portMatch struct {
	field Field
	port  uint16
}

func (m portMatch) Field() Field   { return m.field }
func (m portMatch) String() string { return fmt.Sprintf("%s=%d", m.field, m.port) }

// TCPSrc matches on the TCP source port.
func TCPSrc(port uint16) Match { return portMatch{field: FieldTCPSrc, port: port} }

// TCPDst matches on the TCP destination port.
func TCPDst(port uint16) Match { return portMatch{field: FieldTCPDst, port: port} }

// MatchKey returns a canonical, order-independent string identifying a
// match set. Two FlowMods with the same Table and the same MatchKey refer
// to the same conceptual flow entry; FlowMod.Key is built from it, and
// SwitchWriter.RemoveFlow addresses entries by that key.
func MatchKey(matches []Match) string {
	seen := make(map[Field]string, len(matches))
	for _, m := range matches {
		seen[m.Field()] = m.String()
	}

	// Fixed field order keeps the key stable regardless of slice order.
	order := []Field{FieldEthType, FieldIPv4Src, FieldIPv4Dst, FieldARPTpa, FieldTCPSrc, FieldTCPDst}
	key := ""
	for _, f := range order {
		if s, ok := seen[f]; ok {
			key += s + ","
		}
	}
	return key
}
