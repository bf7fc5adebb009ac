package netpkt

import "net"

// ARP opcodes.
const (
	ARPRequest uint16 = 1
	ARPReply   uint16 = 2
)

const (
	arpHWTypeEthernet  uint16 = 1
	arpProtoTypeIPv4   uint16 = 0x0800
	arpHWAddrLen       uint8  = 6
	arpProtoAddrLen    uint8  = 4
	arpPacketLen              = 28
)

// An ARP is a decoded ARP packet (RFC 826, Ethernet/IPv4 only).
type ARP struct {
	Opcode      uint16
	SenderHW    net.HardwareAddr
	SenderProto net.IP
	TargetHW    net.HardwareAddr
	TargetProto net.IP
}

// DecodeARP parses an ARP packet from the Ethernet payload b.
func DecodeARP(b []byte) (ARP, error) {
	if len(b) < arpPacketLen {
		return ARP{}, ErrShortFrame
	}
	return ARP{
		Opcode:      be16(b[6:8]),
		SenderHW:    net.HardwareAddr(append([]byte(nil), b[8:14]...)),
		SenderProto: net.IP(append([]byte(nil), b[14:18]...)),
		TargetHW:    net.HardwareAddr(append([]byte(nil), b[18:24]...)),
		TargetProto: net.IP(append([]byte(nil), b[24:28]...)),
	}, nil
}

// EncodeARP serializes an ARP packet (Ethernet/IPv4 only).
func EncodeARP(a ARP) []byte {
	b := make([]byte, arpPacketLen)
	putBE16(b[0:2], arpHWTypeEthernet)
	putBE16(b[2:4], arpProtoTypeIPv4)
	b[4] = arpHWAddrLen
	b[5] = arpProtoAddrLen
	putBE16(b[6:8], a.Opcode)
	copy(b[8:14], pad6(a.SenderHW))
	copy(b[14:18], a.SenderProto.To4())
	copy(b[18:24], pad6(a.TargetHW))
	copy(b[24:28], a.TargetProto.To4())
	return b
}

// EncodeARPReply builds the full Ethernet+ARP reply frame the LB edge
// handler sends back out the in-port when the target protocol address is
// a known VIP: sender_hw=vmac, sender_proto=vip, target_hw/proto copied
// from the request's sender fields, Ethernet src=vmac, dst=request src.
func EncodeARPReply(vmac net.HardwareAddr, vip net.IP, reqSenderHW net.HardwareAddr, reqSenderProto net.IP) []byte {
	arp := ARP{
		Opcode:      ARPReply,
		SenderHW:    vmac,
		SenderProto: vip,
		TargetHW:    reqSenderHW,
		TargetProto: reqSenderProto,
	}
	return EncodeEthernet(reqSenderHW, vmac, EtherTypeARP, EncodeARP(arp))
}
