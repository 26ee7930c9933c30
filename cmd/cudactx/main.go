package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"

	"go.uber.org/zap"
	"golang.org/x/term"

	cudaruntime "github.com/accelkit/cuda-runtime"
	"github.com/accelkit/cuda-runtime/cuctx"
	"github.com/accelkit/cuda-runtime/device"
	"github.com/accelkit/cuda-runtime/internal/driver"
	"github.com/accelkit/cuda-runtime/internal/drivertest"
)

var limits = []cuctx.Limit{
	cuctx.LimitStackSize,
	cuctx.LimitPrintfFifoSize,
	cuctx.LimitMallocHeapSize,
	cuctx.LimitDevRuntimeSyncDepth,
	cuctx.LimitDevRuntimePendingLaunchCount,
	cuctx.LimitMaxL2FetchGranularity,
}

func main() {
	var (
		ordinal     = flag.Int("device", 0, "Device ordinal to inspect")
		sim         = flag.Bool("sim", false, "Use the in-memory simulated driver instead of libcuda")
		verbose     = flag.Bool("v", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *sim {
		driver.Set(drivertest.New(2))
	}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			cudaruntime.SetLogger(logger)
			defer logger.Sync()
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*ordinal); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*ordinal); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ordinal int) error {
	// The context created below is current on this thread only; keep the
	// goroutine pinned while we rely on that.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := cudaruntime.Init(cudaruntime.InitDefault); err != nil {
		return err
	}

	version, err := cudaruntime.DriverVersion()
	if err != nil {
		return err
	}
	fmt.Printf("Driver version: %d.%d\n\n", version/1000, version%1000/10)

	devices, err := device.All()
	if err != nil {
		return err
	}
	fmt.Printf("Devices: %d\n", len(devices))
	for _, dev := range devices {
		name, err := dev.Name()
		if err != nil {
			return err
		}
		mem, err := dev.TotalMem()
		if err != nil {
			return err
		}
		major, minor, err := dev.ComputeCapability()
		if err != nil {
			return err
		}
		fmt.Printf("  [%d] %s (%.1f GiB, compute %d.%d)\n",
			dev.Ordinal(), name, float64(mem)/(1<<30), major, minor)
	}

	dev, err := device.Get(ordinal)
	if err != nil {
		return err
	}
	ctx, err := cuctx.CreateAndPush(cuctx.MapHost|cuctx.SchedAuto, dev)
	if err != nil {
		return err
	}
	defer ctx.Close()

	apiVersion, err := ctx.APIVersion()
	if err != nil {
		return err
	}
	flags, err := cuctx.CurrentFlags()
	if err != nil {
		return err
	}
	fmt.Printf("\nContext on device %d:\n", ordinal)
	fmt.Printf("  API version: %s\n", apiVersion)
	fmt.Printf("  Flags:       %#x\n", uint32(flags))

	if r, err := cuctx.GetStreamPriorityRange(); err == nil {
		fmt.Printf("  Stream priorities: greatest %d .. least %d\n", r.Greatest, r.Least)
	}
	if cfg, err := cuctx.GetCacheConfig(); err == nil {
		fmt.Printf("  Cache config:      %s\n", cfg)
	}
	if cfg, err := cuctx.GetSharedMemConfig(); err == nil {
		fmt.Printf("  Shared mem banks:  %s\n", cfg)
	}

	fmt.Printf("\nResource limits:\n")
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, l := range limits {
		v, err := cuctx.GetLimit(l)
		if err != nil {
			fmt.Fprintf(w, "  %s\t(error: %v)\n", l, err)
			continue
		}
		fmt.Fprintf(w, "  %s\t%d\n", l, v)
	}
	w.Flush()

	return cuctx.Synchronize()
}
