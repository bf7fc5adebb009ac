// Package lb implements the virtual-IP load-balancing state: an immutable
// registry of VIP instances (C4) and the edge handler that intercepts ARP
// and new TCP flows to a VIP (C5).
package lb

import (
	"log"
	"net"
	"strings"
	"sync"
)

// A VIPInstance is one virtual IP endpoint: its advertised MAC, the
// ordered pool of backends behind it, and the round-robin cursor used to
// pick the next backend. Everything but the cursor is immutable after
// construction; the cursor mutates under instMu.
type VIPInstance struct {
	VIP      net.IP
	VMAC     net.HardwareAddr
	Backends []net.IP

	instMu sync.Mutex
	cursor int
}

// NextBackend returns the next backend in round-robin order and advances
// the cursor. Selection is per-VIP, not per-client: request i selects
// Backends[i % len(Backends)].
func (v *VIPInstance) NextBackend() net.IP {
	v.instMu.Lock()
	defer v.instMu.Unlock()

	b := v.Backends[v.cursor]
	v.cursor = (v.cursor + 1) % len(v.Backends)
	return b
}

// A Registry is the parsed, read-mostly set of configured VIP instances.
// Only each instance's round-robin cursor mutates after construction.
type Registry struct {
	byVIP map[string]*VIPInstance
	order []*VIPInstance
}

// All returns every configured VIP instance, in configuration order.
func (r *Registry) All() []*VIPInstance {
	return r.order
}

// Lookup returns the VIPInstance fronting vip, if any.
func (r *Registry) Lookup(vip net.IP) (*VIPInstance, bool) {
	inst, ok := r.byVIP[vip.String()]
	return inst, ok
}

// ParseConfig parses the `instances` configuration key:
//
//	VIP_entry (";" VIP_entry)*
//	VIP_entry := IPv4 SP MAC SP IPv4 ("," IPv4)*
//
// A malformed entry is logged and skipped; it never aborts the parse
// (ConfigInvalid is never fatal).
func ParseConfig(raw string, ll *log.Logger) *Registry {
	reg := &Registry{byVIP: make(map[string]*VIPInstance)}

	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		inst, err := parseEntry(entry)
		if err != nil {
			logf(ll, "lb: skipping malformed VIP entry %q: %v", entry, err)
			continue
		}

		reg.byVIP[inst.VIP.String()] = inst
		reg.order = append(reg.order, inst)
	}

	return reg
}

func parseEntry(entry string) (*VIPInstance, error) {
	fields := strings.Fields(entry)
	if len(fields) != 3 {
		return nil, errBadFieldCount(len(fields))
	}

	vip := net.ParseIP(fields[0])
	if vip == nil || vip.To4() == nil {
		return nil, errBadAddress("vip", fields[0])
	}

	vmac, err := net.ParseMAC(fields[1])
	if err != nil {
		return nil, err
	}

	var backends []net.IP
	for _, b := range strings.Split(fields[2], ",") {
		ip := net.ParseIP(b)
		if ip == nil || ip.To4() == nil {
			return nil, errBadAddress("backend", b)
		}
		backends = append(backends, ip.To4())
	}
	if len(backends) == 0 {
		return nil, errNoBackends
	}

	return &VIPInstance{VIP: vip.To4(), VMAC: vmac, Backends: backends}, nil
}

func logf(ll *log.Logger, format string, args ...interface{}) {
	if ll == nil {
		return
	}
	ll.Printf(format, args...)
}
