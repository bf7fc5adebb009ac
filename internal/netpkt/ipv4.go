package netpkt

import "net"

// IP protocol numbers relevant to the LB edge handler.
const (
	ProtocolTCP uint8 = 6
)

// DefaultTTL and DefaultDSCP are the values the controller stamps onto
// every packet it synthesizes.
const (
	DefaultTTL  uint8 = 64
	DefaultDSCP uint8 = 0
)

// An IPv4 is a decoded IPv4 header (options are not retained) plus its
// payload.
type IPv4 struct {
	IHL      uint8
	DSCP     uint8
	TTL      uint8
	Protocol uint8
	Src      net.IP
	Dst      net.IP
	Payload  []byte
}

// DecodeIPv4 parses an IPv4 header from the Ethernet payload b.
func DecodeIPv4(b []byte) (IPv4, error) {
	if len(b) < 20 {
		return IPv4{}, ErrShortFrame
	}
	version := b[0] >> 4
	ihl := b[0] & 0x0f
	hlen := int(ihl) * 4
	if version != 4 || hlen < 20 || len(b) < hlen {
		return IPv4{}, ErrShortFrame
	}

	return IPv4{
		IHL:      ihl,
		DSCP:     b[1] >> 2,
		TTL:      b[8],
		Protocol: b[9],
		Src:      net.IP(append([]byte(nil), b[12:16]...)),
		Dst:      net.IP(append([]byte(nil), b[16:20]...)),
		Payload:  b[hlen:],
	}, nil
}

// EncodeIPv4 serializes a minimal (no options) IPv4 header plus payload,
// stamping DefaultTTL/DefaultDSCP and computing the header checksum.
func EncodeIPv4(proto uint8, src, dst net.IP, payload []byte) []byte {
	const hlen = 20
	total := hlen + len(payload)
	b := make([]byte, total)

	b[0] = 0x45 // version 4, IHL 5
	b[1] = DefaultDSCP << 2
	putBE16(b[2:4], uint16(total))
	// id, flags/fragment offset left zero: these are controller-synthesized
	// singleton packets, never fragmented.
	b[8] = DefaultTTL
	b[9] = proto
	copy(b[12:16], src.To4())
	copy(b[16:20], dst.To4())

	putBE16(b[10:12], ipv4Checksum(b[0:hlen]))
	copy(b[hlen:], payload)
	return b
}

// ipv4Checksum computes the IPv4 header checksum (RFC 791) over hdr, which
// must have its checksum field zeroed.
func ipv4Checksum(hdr []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(hdr); i += 2 {
		if i == 10 {
			continue // checksum field itself
		}
		sum += uint32(be16(hdr[i : i+2]))
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
