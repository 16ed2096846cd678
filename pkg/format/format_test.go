package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bytes(tt.in))
	}
}

func TestBytesPerSec(t *testing.T) {
	assert.Equal(t, "100.0 B/s", BytesPerSec(100))
	assert.Equal(t, "1.5 KB/s", BytesPerSec(1536))
	assert.Equal(t, "2.0 MB/s", BytesPerSec(2*1024*1024))
	assert.Equal(t, "3.0 GB/s", BytesPerSec(3*1024*1024*1024))
}

func TestBitsPerSec(t *testing.T) {
	assert.Equal(t, "500 bps", BitsPerSec(500))
	assert.Equal(t, "16.0 Kbps", BitsPerSec(16000))
	assert.Equal(t, "100.0 Mbps", BitsPerSec(100e6))
	assert.Equal(t, "1.0 Gbps", BitsPerSec(1e9))
}
