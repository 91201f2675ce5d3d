package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceKind names a compute target.
type DeviceKind string

const (
	DeviceCPU  DeviceKind = "cpu"
	DeviceCUDA DeviceKind = "cuda"
)

// Device is the compute context the model runs on.
type Device struct {
	Kind  DeviceKind
	Index int // GPU ordinal, 0 for cpu
}

// ParseDevice accepts "cpu", "cuda" and "cuda:N".
func ParseDevice(s string) (Device, error) {
	name, idx, hasIdx := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	switch DeviceKind(name) {
	case DeviceCPU:
		if hasIdx {
			return Device{}, fmt.Errorf("device %q: cpu takes no index", s)
		}
		return Device{Kind: DeviceCPU}, nil
	case DeviceCUDA:
		if !hasIdx {
			return Device{Kind: DeviceCUDA}, nil
		}
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return Device{}, fmt.Errorf("device %q: bad index", s)
		}
		return Device{Kind: DeviceCUDA, Index: n}, nil
	default:
		return Device{}, fmt.Errorf("unknown device %q", s)
	}
}

func (d Device) String() string {
	if d.Kind == DeviceCUDA {
		return fmt.Sprintf("cuda:%d", d.Index)
	}
	return string(d.Kind)
}
