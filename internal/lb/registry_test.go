package lb

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfigSkipsMalformedEntries(t *testing.T) {
	raw := "10.0.0.100 02:00:00:00:00:64 10.0.0.1,10.0.0.2; garbage entry here; 10.0.0.200 not-a-mac 10.0.0.3"

	reg := ParseConfig(raw, nil)

	require.Len(t, reg.All(), 1, "expected only the well-formed entry to survive")

	inst, ok := reg.Lookup(net.IPv4(10, 0, 0, 100))
	require.True(t, ok, "expected to find VIP 10.0.0.100")
	require.Equal(t, "02:00:00:00:00:64", inst.VMAC.String())
	require.Len(t, inst.Backends, 2)
}

func TestParseConfigMultipleInstances(t *testing.T) {
	raw := "10.0.0.100 02:00:00:00:00:64 10.0.0.1,10.0.0.2;10.0.0.200 02:00:00:00:00:c8 10.0.0.3"

	reg := ParseConfig(raw, nil)
	require.Len(t, reg.All(), 2)

	_, ok := reg.Lookup(net.IPv4(10, 0, 0, 200))
	require.True(t, ok, "expected to find VIP 10.0.0.200")
}

// TestNextBackendRoundRobin verifies that with backends [b0,b1,b2],
// request i selects backends[i % 3].
func TestNextBackendRoundRobin(t *testing.T) {
	inst := &VIPInstance{
		VIP:  net.IPv4(10, 0, 0, 100),
		VMAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 0x64},
		Backends: []net.IP{
			net.IPv4(10, 0, 0, 1),
			net.IPv4(10, 0, 0, 2),
			net.IPv4(10, 0, 0, 3),
		},
	}

	for i := 0; i < 7; i++ {
		want := inst.Backends[i%3]
		got := inst.NextBackend()
		require.Truef(t, got.Equal(want), "request %d: got backend %s, want %s", i, got, want)
	}
}
