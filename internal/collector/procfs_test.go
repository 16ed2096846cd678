package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozo-moto/nbmon/pkg/types"
)

const procNetDevFixture = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 1840624   18234    0    0    0     0          0         0  1840624   18234    0    0    0     0       0          0
  eth0: 987654321  765432    2    1    0     0          0       100 123456789  654321    3    0    0     0       0          0
wlan0:55555     444    0    0    0     0          0         0    66666     555    0    0    0     0       0          0
`

func TestParseProcNetDev(t *testing.T) {
	sample, err := parseProcNetDev(procNetDevFixture, "eth0")
	require.NoError(t, err)
	assert.Equal(t, types.InterfaceID("eth0"), sample.ID)
	assert.Equal(t, uint64(987654321), sample.BytesRecv)
	assert.Equal(t, uint64(765432), sample.PacketsRecv)
	assert.Equal(t, uint64(123456789), sample.BytesSent)
	assert.Equal(t, uint64(654321), sample.PacketsSent)
}

func TestParseProcNetDevNoSpaceAfterColon(t *testing.T) {
	// Interface names can butt up against the colon with counters
	// following immediately.
	sample, err := parseProcNetDev(procNetDevFixture, "wlan0")
	require.NoError(t, err)
	assert.Equal(t, uint64(55555), sample.BytesRecv)
	assert.Equal(t, uint64(66666), sample.BytesSent)
}

func TestParseProcNetDevUnknownInterface(t *testing.T) {
	_, err := parseProcNetDev(procNetDevFixture, "eth9")
	assert.Error(t, err)
}

func writeSysInterface(t *testing.T, root, name string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for file, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content+"\n"), 0o644))
	}
}

func TestProcfsEnumerate(t *testing.T) {
	sysRoot := t.TempDir()
	writeSysInterface(t, sysRoot, "lo", map[string]string{
		"type": "772", "operstate": "unknown", "address": "00:00:00:00:00:00",
	})
	writeSysInterface(t, sysRoot, "eth0", map[string]string{
		"type": "1", "operstate": "up", "address": "aa:bb:cc:dd:ee:ff", "speed": "1000",
	})
	writeSysInterface(t, sysRoot, "tun0", map[string]string{
		"type": "65534", "operstate": "up",
	})

	procPath := filepath.Join(t.TempDir(), "dev")
	require.NoError(t, os.WriteFile(procPath, []byte(procNetDevFixture), 0o644))

	p := newProcfsAt(procPath, sysRoot)
	descs, err := p.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 3)

	byID := make(map[types.InterfaceID]types.InterfaceDescriptor)
	for _, d := range descs {
		byID[d.ID] = d
	}

	assert.Equal(t, types.KindLoopback, byID["lo"].Kind)
	assert.Empty(t, byID["lo"].MACAddress)

	eth := byID["eth0"]
	assert.Equal(t, types.KindPhysical, eth.Kind)
	assert.True(t, eth.IsUp)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", eth.MACAddress)
	assert.Equal(t, uint64(1_000_000_000), eth.SpeedBps)

	tun := byID["tun0"]
	assert.Equal(t, types.KindVirtual, tun.Kind)
	// No readable speed file: assume gigabit.
	assert.Equal(t, uint64(1_000_000_000), tun.SpeedBps)
}

func TestProcfsSample(t *testing.T) {
	procPath := filepath.Join(t.TempDir(), "dev")
	require.NoError(t, os.WriteFile(procPath, []byte(procNetDevFixture), 0o644))

	p := newProcfsAt(procPath, t.TempDir())
	sample, err := p.Sample(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, uint64(987654321), sample.BytesRecv)
	assert.False(t, sample.Timestamp.IsZero())
}
