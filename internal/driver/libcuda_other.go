//go:build !linux

package driver

import "fmt"

func loadNative() (API, error) {
	return nil, fmt.Errorf("native CUDA driver loading is only supported on linux")
}
