package types

import "time"

// InterfaceID identifies one network adapter. On Linux it is the
// interface name from /sys/class/net; on Windows the adapter name
// reported by the counter API.
type InterfaceID string

type InterfaceKind int

const (
	KindUnknown InterfaceKind = iota
	KindPhysical
	KindVirtual
	KindLoopback
)

func (k InterfaceKind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindVirtual:
		return "virtual"
	case KindLoopback:
		return "loopback"
	default:
		return "unknown"
	}
}

// InterfaceDescriptor is created at enumeration time and immutable
// afterwards. The interface set is diffable: descriptors appear and
// vanish between enumerations.
type InterfaceDescriptor struct {
	ID          InterfaceID
	DisplayName string
	Kind        InterfaceKind
	MACAddress  string
	SpeedBps    uint64
	IsUp        bool
}

// RawCounterSample is a timestamped read of an adapter's cumulative
// counters. Counters only grow until the adapter is reset (driver
// reload, disable/enable, sleep/resume), at which point they may drop
// to a smaller value or zero.
type RawCounterSample struct {
	ID          InterfaceID
	Timestamp   time.Time
	BytesRecv   uint64
	BytesSent   uint64
	PacketsRecv uint64
	PacketsSent uint64
}

// RateSample is derived from two consecutive RawCounterSamples of the
// same interface. Rates are bits per second. Reset marks the
// zero-valued boundary sample emitted when a counter went backward.
type RateSample struct {
	ID        InterfaceID
	Timestamp time.Time
	RxBps     float64
	TxBps     float64
	Elapsed   time.Duration
	Reset     bool
}

// CycleResult is the outcome of one collection cycle. Interfaces that
// produced a rate appear in Rates; interfaces that failed appear in
// Errors. An interface can appear in neither: its first sample only
// seeds the rate engine.
type CycleResult struct {
	Timestamp time.Time
	Duration  time.Duration
	Rates     map[InterfaceID]RateSample
	Errors    map[InterfaceID]*CollectionError
	// EnumerationErr is set when listing interfaces failed; the cycle
	// then ran against the last known interface set.
	EnumerationErr error
}
