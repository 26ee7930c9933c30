package cuctx

import "fmt"

// Flags configure context creation (CU_CTX_*).
//
// MapHost | SchedAuto is a good default.
type Flags uint32

const (
	// SchedAuto lets the driver choose between spinning and yielding while
	// waiting for the device. This is the default.
	SchedAuto Flags = 0x00
	// SchedSpin makes host threads spin while waiting for the device. Lower
	// latency, at the cost of other CPU work.
	SchedSpin Flags = 0x01
	// SchedYield makes host threads yield while waiting for the device.
	SchedYield Flags = 0x02
	// SchedBlockingSync blocks host threads on a synchronization primitive
	// while waiting for the device.
	SchedBlockingSync Flags = 0x04
	// MapHost enables mapped pinned host allocations. Required for
	// page-locked memory.
	MapHost Flags = 0x08
	// LmemResizeToMax keeps local memory allocations resized to the maximum
	// a launched kernel needed, preventing thrashing across launches.
	LmemResizeToMax Flags = 0x10
)

// CacheConfig is the preferred split between L1 cache and shared memory on
// devices where the two share hardware. It is a preference only; the driver
// may choose a different configuration if a function requires it.
type CacheConfig uint32

const (
	// PreferNone requests no preference (default).
	PreferNone CacheConfig = 0
	// PreferShared requests larger shared memory and smaller L1.
	PreferShared CacheConfig = 1
	// PreferL1 requests larger L1 and smaller shared memory.
	PreferL1 CacheConfig = 2
	// PreferEqual requests equal-sized L1 and shared memory.
	PreferEqual CacheConfig = 3
)

// String implements fmt.Stringer.
func (c CacheConfig) String() string {
	switch c {
	case PreferNone:
		return "prefer-none"
	case PreferShared:
		return "prefer-shared"
	case PreferL1:
		return "prefer-l1"
	case PreferEqual:
		return "prefer-equal"
	}
	return fmt.Sprintf("cache-config(%d)", uint32(c))
}

// SharedMemConfig is the shared-memory bank size used for subsequent kernel
// launches, on devices with configurable banks.
type SharedMemConfig uint32

const (
	// BankSizeDefault restores the device's default bank size.
	BankSizeDefault SharedMemConfig = 0
	// BankSizeFourByte sets four-byte shared-memory banks.
	BankSizeFourByte SharedMemConfig = 1
	// BankSizeEightByte sets eight-byte shared-memory banks.
	BankSizeEightByte SharedMemConfig = 2
)

// String implements fmt.Stringer.
func (c SharedMemConfig) String() string {
	switch c {
	case BankSizeDefault:
		return "bank-size-default"
	case BankSizeFourByte:
		return "bank-size-4"
	case BankSizeEightByte:
		return "bank-size-8"
	}
	return fmt.Sprintf("shared-mem-config(%d)", uint32(c))
}

// Limit identifies a device-runtime resource ceiling (CU_LIMIT_*).
type Limit uint32

const (
	// LimitStackSize is the per-GPU-thread stack size in bytes.
	LimitStackSize Limit = 0
	// LimitPrintfFifoSize is the size in bytes of the FIFO backing the
	// device-side printf(). Frozen once a kernel using printf has launched.
	LimitPrintfFifoSize Limit = 1
	// LimitMallocHeapSize is the size in bytes of the heap backing
	// device-side malloc/free. Frozen once a kernel using them has launched.
	LimitMallocHeapSize Limit = 2
	// LimitDevRuntimeSyncDepth is the deepest grid nesting level from which
	// a device thread may synchronize on child launches. Frozen once a
	// kernel using the device runtime has launched.
	LimitDevRuntimeSyncDepth Limit = 3
	// LimitDevRuntimePendingLaunchCount is the maximum number of
	// outstanding device-runtime launches. Frozen like the sync depth.
	LimitDevRuntimePendingLaunchCount Limit = 4
	// LimitMaxL2FetchGranularity is the L2 fetch granularity hint. The
	// platform may ignore or clamp it.
	LimitMaxL2FetchGranularity Limit = 5
)

// String implements fmt.Stringer.
func (l Limit) String() string {
	switch l {
	case LimitStackSize:
		return "stack-size"
	case LimitPrintfFifoSize:
		return "printf-fifo-size"
	case LimitMallocHeapSize:
		return "malloc-heap-size"
	case LimitDevRuntimeSyncDepth:
		return "dev-runtime-sync-depth"
	case LimitDevRuntimePendingLaunchCount:
		return "dev-runtime-pending-launch-count"
	case LimitMaxL2FetchGranularity:
		return "max-l2-fetch-granularity"
	}
	return fmt.Sprintf("limit(%d)", uint32(l))
}

// StreamPriorityRange bounds the schedulable stream priorities of the
// current context's device. Numerically lower values mean higher priority,
// so Greatest <= Least. Both are zero when the device does not support
// stream priorities.
type StreamPriorityRange struct {
	Least    int32
	Greatest int32
}

// APIVersion is the driver API version a context was created against,
// encoded as a composite integer (for example 3020 means 3.2). It is not
// necessarily the newest version the installed driver supports.
type APIVersion int

// Major returns the major version component.
func (v APIVersion) Major() int { return int(v) / 1000 }

// Minor returns the minor version component.
func (v APIVersion) Minor() int { return int(v) % 1000 / 10 }

// String implements fmt.Stringer.
func (v APIVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}
