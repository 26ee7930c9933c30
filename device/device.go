package device

import (
	"fmt"

	"github.com/accelkit/cuda-runtime/errors"
	"github.com/accelkit/cuda-runtime/internal/driver"
)

// Device is a reference to a single CUDA device. The zero value refers to
// device 0.
type Device struct {
	id driver.Device
}

// Get returns the device with the given ordinal.
func Get(ordinal int) (Device, error) {
	drv, err := driver.Active()
	if err != nil {
		return Device{}, errors.Unavailable("cuDeviceGet", err)
	}
	if ordinal < 0 {
		return Device{}, errors.InvalidValue("cuDeviceGet", fmt.Sprintf("negative device ordinal %d", ordinal))
	}
	id, st := drv.DeviceGet(int32(ordinal))
	if st != driver.Success {
		return Device{}, errors.FromStatus("cuDeviceGet", st)
	}
	return Device{id: id}, nil
}

// Count returns the number of CUDA-capable devices.
func Count() (int, error) {
	drv, err := driver.Active()
	if err != nil {
		return 0, errors.Unavailable("cuDeviceGetCount", err)
	}
	n, st := drv.DeviceGetCount()
	if st != driver.Success {
		return 0, errors.FromStatus("cuDeviceGetCount", st)
	}
	return int(n), nil
}

// All returns every visible device in ordinal order.
func All() ([]Device, error) {
	n, err := Count()
	if err != nil {
		return nil, err
	}
	devices := make([]Device, 0, n)
	for i := 0; i < n; i++ {
		d, err := Get(i)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// Ordinal returns the device's ordinal.
func (d Device) Ordinal() int {
	return int(d.id)
}

// Name returns the human-readable device name.
func (d Device) Name() (string, error) {
	drv, err := driver.Active()
	if err != nil {
		return "", errors.Unavailable("cuDeviceGetName", err)
	}
	name, st := drv.DeviceGetName(d.id)
	if st != driver.Success {
		return "", errors.FromStatus("cuDeviceGetName", st)
	}
	return name, nil
}

// TotalMem returns the total device memory in bytes.
func (d Device) TotalMem() (uint64, error) {
	drv, err := driver.Active()
	if err != nil {
		return 0, errors.Unavailable("cuDeviceTotalMem", err)
	}
	bytes, st := drv.DeviceTotalMem(d.id)
	if st != driver.Success {
		return 0, errors.FromStatus("cuDeviceTotalMem", st)
	}
	return bytes, nil
}

// ComputeCapability returns the device's compute capability version.
func (d Device) ComputeCapability() (major, minor int, err error) {
	drv, err := driver.Active()
	if err != nil {
		return 0, 0, errors.Unavailable("cuDeviceGetAttribute", err)
	}
	ma, st := drv.DeviceGetAttribute(driver.AttrComputeCapabilityMajor, d.id)
	if st != driver.Success {
		return 0, 0, errors.FromStatus("cuDeviceGetAttribute", st)
	}
	mi, st := drv.DeviceGetAttribute(driver.AttrComputeCapabilityMinor, d.id)
	if st != driver.Success {
		return 0, 0, errors.FromStatus("cuDeviceGetAttribute", st)
	}
	return int(ma), int(mi), nil
}

// String implements fmt.Stringer.
func (d Device) String() string {
	return fmt.Sprintf("cuda device %d", int(d.id))
}
