package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozo-moto/nbmon/pkg/types"
)

func descs(ids ...types.InterfaceID) []types.InterfaceDescriptor {
	out := make([]types.InterfaceDescriptor, len(ids))
	for i, id := range ids {
		out[i] = types.InterfaceDescriptor{ID: id, DisplayName: string(id), Kind: types.KindPhysical}
	}
	return out
}

func TestRegistryInitialReconcile(t *testing.T) {
	r := NewRegistry()
	appeared, vanished, dropped := r.Reconcile(descs("eth0", "wlan0"))

	assert.ElementsMatch(t, []types.InterfaceID{"eth0", "wlan0"}, appeared)
	assert.Empty(t, vanished)
	assert.Empty(t, dropped)
	assert.Equal(t, []types.InterfaceID{"eth0", "wlan0"}, r.IDs())
}

func TestRegistryVanishGraceThenDrop(t *testing.T) {
	r := NewRegistry()
	r.Reconcile(descs("eth0", "wlan0"))

	appeared, vanished, dropped := r.Reconcile(descs("eth0"))
	assert.Empty(t, appeared)
	assert.Equal(t, []types.InterfaceID{"wlan0"}, vanished)
	assert.Empty(t, dropped)

	// One grace round: the UI can still show it as removed.
	removed := r.Removed()
	require.Len(t, removed, 1)
	assert.Equal(t, types.InterfaceID("wlan0"), removed[0].ID)

	// Next round it is dropped for good.
	_, _, dropped = r.Reconcile(descs("eth0"))
	assert.Equal(t, []types.InterfaceID{"wlan0"}, dropped)
	assert.Empty(t, r.Removed())
}

func TestRegistryReappearDuringGrace(t *testing.T) {
	r := NewRegistry()
	r.Reconcile(descs("eth0", "usb0"))
	r.Reconcile(descs("eth0"))

	appeared, vanished, dropped := r.Reconcile(descs("eth0", "usb0"))
	assert.Equal(t, []types.InterfaceID{"usb0"}, appeared)
	assert.Empty(t, vanished)
	assert.Empty(t, dropped)
	assert.Empty(t, r.Removed())
}

func TestRegistrySnapshotPreservesOrder(t *testing.T) {
	r := NewRegistry()
	r.Reconcile(descs("wlan0", "eth0", "tun0"))

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, types.InterfaceID("wlan0"), snap[0].ID)
	assert.Equal(t, types.InterfaceID("eth0"), snap[1].ID)
	assert.Equal(t, types.InterfaceID("tun0"), snap[2].ID)
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Reconcile(descs("eth0"))

	_, ok := r.Lookup("eth0")
	assert.True(t, ok)
	_, ok = r.Lookup("eth9")
	assert.False(t, ok)
}
