package camdev

import (
	"fmt"
	"sort"
	"sync"
)

// Device name constants for the built-in device packages.
const (
	// DeviceSoftware is the CPU device (camdev/device/software).
	DeviceSoftware = "software"
	// DeviceGPU is the WebGPU device (camdev/device/gpu).
	DeviceGPU = "gpu"
	// DeviceRecording is the recording device (camdev/device/recording).
	DeviceRecording = "recording"
)

// DeviceFactory creates a new device instance.
type DeviceFactory func() Device

var (
	registryMu sync.RWMutex
	factories  = make(map[string]DeviceFactory)

	// Priority order for DefaultDevice (first registered wins).
	devicePriority = []string{DeviceGPU, DeviceSoftware}
)

// Register registers a device factory under name.
// It is typically called from init() in device packages, following the
// database/sql driver pattern:
//
//	func init() {
//	    camdev.Register("software", func() camdev.Device {
//	        return software.New()
//	    })
//	}
//
// Register panics if factory is nil or if name is already registered.
func Register(name string, factory DeviceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("camdev: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("camdev: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes a device from the registry.
// This is primarily useful for testing. Unknown names are a no-op.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// IsRegistered checks if a device with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Devices returns the sorted names of all registered devices.
func Devices() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered devices.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(factories)
}

// NewDevice creates and initializes a device by name.
//
// The device receives the current logger (when it implements
// SetLogger) and is initialized (when it implements Initializer).
// The caller owns the returned device.
func NewDevice(name string) (Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown device %q (forgotten import?)", ErrDeviceNotAvailable, name)
	}
	return initDevice(name, factory())
}

// DefaultDevice creates the best available device.
// Priority order: gpu > software > first registered name alphabetically.
// Returns ErrDeviceNotAvailable if the registry is empty.
func DefaultDevice() (Device, error) {
	registryMu.RLock()
	name := ""
	for _, candidate := range devicePriority {
		if _, ok := factories[candidate]; ok {
			name = candidate
			break
		}
	}
	if name == "" && len(factories) > 0 {
		names := make([]string, 0, len(factories))
		for n := range factories {
			names = append(names, n)
		}
		sort.Strings(names)
		name = names[0]
	}
	registryMu.RUnlock()

	if name == "" {
		return nil, ErrDeviceNotAvailable
	}
	return NewDevice(name)
}

func initDevice(name string, d Device) (Device, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: factory for %q returned nil", ErrDeviceNotAvailable, name)
	}
	handToDevice(d, Logger())
	if err := initializeDevice(d); err != nil {
		closeDevice(d)
		return nil, fmt.Errorf("camdev: init device %q: %w", name, err)
	}
	Logger().Info("camdev: device created", "device", d.Name())
	return d, nil
}
