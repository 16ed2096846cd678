package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/nozo-moto/nbmon/pkg/types"
)

// Gopsutil reads counters through gopsutil, which wraps the native
// counter API of each platform. It is the source on Windows and any
// other non-Linux system.
type Gopsutil struct{}

func NewGopsutil() *Gopsutil {
	return &Gopsutil{}
}

func (g *Gopsutil) Enumerate(ctx context.Context) ([]types.InterfaceDescriptor, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	descs := make([]types.InterfaceDescriptor, 0, len(ifaces))
	for _, iface := range ifaces {
		loopback, up := false, false
		for _, flag := range iface.Flags {
			switch strings.ToLower(flag) {
			case "loopback":
				loopback = true
			case "up":
				up = true
			}
		}

		descs = append(descs, types.InterfaceDescriptor{
			ID:          types.InterfaceID(iface.Name),
			DisplayName: iface.Name,
			Kind:        Classify(iface.Name, "", loopback),
			MACAddress:  strings.ToUpper(iface.HardwareAddr),
			IsUp:        up,
		})
	}

	return descs, nil
}

func (g *Gopsutil) Sample(ctx context.Context, id types.InterfaceID) (types.RawCounterSample, error) {
	counters, err := psnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return types.RawCounterSample{}, fmt.Errorf("failed to get network counters: %w", err)
	}

	for _, counter := range counters {
		if counter.Name != string(id) {
			continue
		}
		return types.RawCounterSample{
			ID:          id,
			Timestamp:   time.Now(),
			BytesRecv:   counter.BytesRecv,
			BytesSent:   counter.BytesSent,
			PacketsRecv: counter.PacketsRecv,
			PacketsSent: counter.PacketsSent,
		}, nil
	}

	return types.RawCounterSample{}, fmt.Errorf("interface %s not found", id)
}
