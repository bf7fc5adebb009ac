package main

import (
	"context"

	"github.com/ovn-sdncore/sdncore/internal/ofsvc"
	"github.com/ovn-sdncore/sdncore/internal/topo"
)

// noopServices stands in for the host framework's switch and device
// services when running this binary standalone (no switches ever
// connect). A real deployment never uses this type; it calls
// internal/app.New with its own transport.
type noopServices struct{}

func (noopServices) Connected(sw topo.SwitchID) bool { return false }

func (noopServices) SendFlowMod(ctx context.Context, sw topo.SwitchID, fm ofsvc.FlowMod) error {
	return nil
}

func (noopServices) SendPacketOut(ctx context.Context, sw topo.SwitchID, port topo.PortNo, data []byte) error {
	return nil
}

func (noopServices) RemoveFlow(ctx context.Context, sw topo.SwitchID, table uint8, match []ofsvc.Match) error {
	return nil
}

func (noopServices) Devices(filter ofsvc.DeviceFilter) []ofsvc.Device { return nil }
