package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nozo-moto/nbmon/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		loopback    bool
		want        types.InterfaceKind
	}{
		{"lo", "", false, types.KindLoopback},
		{"lo0", "", false, types.KindLoopback},
		{"eth0", "", true, types.KindLoopback},
		{"eth0", "Realtek PCIe GbE", false, types.KindPhysical},
		{"enp3s0", "", false, types.KindPhysical},
		{"tun0", "", false, types.KindVirtual},
		{"tap1", "", false, types.KindVirtual},
		{"wg0", "", false, types.KindVirtual},
		{"docker0", "", false, types.KindVirtual},
		{"veth12ab", "", false, types.KindVirtual},
		{"Ethernet 2", "VMware Virtual Ethernet Adapter", false, types.KindVirtual},
		{"Ethernet", "Hyper-V Virtual Switch", false, types.KindVirtual},
		{"Local Area Connection", "TAP-Windows Adapter V9", false, types.KindVirtual},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name, tt.description, tt.loopback))
		})
	}
}
