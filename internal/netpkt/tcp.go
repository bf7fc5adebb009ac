package netpkt

import "net"

// TCP flag bits.
const (
	TCPFlagFIN uint8 = 0x01
	TCPFlagSYN uint8 = 0x02
	TCPFlagRST uint8 = 0x04
	TCPFlagPSH uint8 = 0x08
	TCPFlagACK uint8 = 0x10
	TCPFlagURG uint8 = 0x20
)

// A TCP is a decoded TCP header plus its payload.
type TCP struct {
	SrcPort uint16
	DstPort uint16
	Seq     uint32
	Ack     uint32
	Flags   uint8
	Payload []byte
}

// HasFlag reports whether every bit in mask is set in the header's flags.
func (t TCP) HasFlag(mask uint8) bool { return t.Flags&mask == mask }

// DecodeTCP parses a TCP header from the IPv4 payload b.
func DecodeTCP(b []byte) (TCP, error) {
	if len(b) < 20 {
		return TCP{}, ErrShortFrame
	}
	dataOffset := int(b[12]>>4) * 4
	if dataOffset < 20 || len(b) < dataOffset {
		return TCP{}, ErrShortFrame
	}

	return TCP{
		SrcPort: be16(b[0:2]),
		DstPort: be16(b[2:4]),
		Seq:     be32(b[4:8]),
		Ack:     be32(b[8:12]),
		Flags:   b[13],
		Payload: b[dataOffset:],
	}, nil
}

// encodeTCPSegment serializes a minimal (no options) TCP header with the
// given flags, seq/ack numbers and zero window. The checksum field is left
// zero; the caller fills it in with tcpChecksum.
func encodeTCPSegment(srcPort, dstPort uint16, seq, ack uint32, flags uint8) []byte {
	const hlen = 20
	b := make([]byte, hlen)
	putBE16(b[0:2], srcPort)
	putBE16(b[2:4], dstPort)
	putBE32(b[4:8], seq)
	putBE32(b[8:12], ack)
	b[12] = 5 << 4 // data offset, no options
	b[13] = flags
	// window, checksum and urgent pointer all left zero: synthesized
	// segments carry no payload and need no options.
	return b
}

// tcpChecksum computes the TCP checksum over seg using the IPv4
// pseudo-header of (src, dst, protocol=TCP).
func tcpChecksum(src, dst net.IP, seg []byte) uint16 {
	var sum uint32

	s4, d4 := src.To4(), dst.To4()
	sum += uint32(be16(s4[0:2])) + uint32(be16(s4[2:4]))
	sum += uint32(be16(d4[0:2])) + uint32(be16(d4[2:4]))
	sum += uint32(ProtocolTCP)
	sum += uint32(len(seg))

	for i := 0; i+1 < len(seg); i += 2 {
		sum += uint32(be16(seg[i : i+2]))
	}
	if len(seg)%2 == 1 {
		sum += uint32(seg[len(seg)-1]) << 8
	}

	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

// EncodeTCPReset synthesizes a zero-payload, zero-window, zero-option TCP
// RST segment wrapped in an IPv4/Ethernet frame. seq is the segment's
// sequence number (the received ack number, or 0 if absent) and ack is the
// received seq plus the received payload length.
func EncodeTCPReset(ethSrc, ethDst net.HardwareAddr, ipSrc, ipDst net.IP, srcPort, dstPort uint16, seq, ack uint32) []byte {
	seg := encodeTCPSegment(srcPort, dstPort, seq, ack, TCPFlagRST)
	putBE16(seg[16:18], tcpChecksum(ipSrc, ipDst, seg))

	ipPacket := EncodeIPv4(ProtocolTCP, ipSrc, ipDst, seg)
	return EncodeEthernet(ethDst, ethSrc, EtherTypeIPv4, ipPacket)
}
