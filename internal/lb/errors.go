package lb

import (
	"fmt"
	"net"
)

// A ResolutionMissError reports that a VIP's selected backend has no known
// MAC address, so its first SYN could not be dispatched. The device table
// is expected to converge shortly after the backend itself sends traffic;
// until then the SYN is dropped and the client retransmits.
type ResolutionMissError struct {
	VIP     net.IP
	Backend net.IP
}

func (e *ResolutionMissError) Error() string {
	return fmt.Sprintf("no MAC known for backend %s (vip %s)", e.Backend, e.VIP)
}

// errBadFieldCount reports a VIP_entry that didn't split into exactly
// three whitespace-separated fields (vip, vmac, backend list).
func errBadFieldCount(n int) error {
	return fmt.Errorf("expected 3 fields (vip vmac backends), got %d", n)
}

// errBadAddress reports a field that failed to parse as an IPv4 address.
func errBadAddress(what, value string) error {
	return fmt.Errorf("invalid %s address %q", what, value)
}

// errNoBackends reports a VIP_entry whose backend list was empty.
var errNoBackends = fmt.Errorf("no backends listed")
