// SPDX-License-Identifier: MIT
package capture

import (
	"github.com/gordonklaus/portaudio"

	"spectra/internal/config"
)

// Device describes one enumerated audio device.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// paDevicesFunc and paDefaultInputDeviceFunc are indirected for tests.
var paDevicesFunc = portaudio.Devices
var paDefaultInputDeviceFunc = portaudio.DefaultInputDevice

// ListInputDevices enumerates every device exposing at least one input
// channel. The caller is responsible for having the library acquired
// (see acquireLibrary) before calling this.
func ListInputDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, newError(Unavailable, err, "capture: enumerate devices failed")
	}

	devices := make([]Device, 0, len(infos))
	for i, info := range infos {
		if info.MaxInputChannels == 0 {
			continue
		}
		devices = append(devices, Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		})
	}
	return devices, nil
}

// inputDeviceInfo resolves a deviceID to a *portaudio.DeviceInfo. A
// deviceID of config.MinDeviceID selects the system default input device.
func inputDeviceInfo(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == config.MinDeviceID {
		dev, err := paDefaultInputDeviceFunc()
		if err != nil {
			return nil, newError(Unavailable, err, "capture: no default input device")
		}
		return dev, nil
	}

	infos, err := paDevicesFunc()
	if err != nil {
		return nil, newError(Unavailable, err, "capture: enumerate devices failed")
	}
	if deviceID < 0 || deviceID >= len(infos) {
		return nil, newError(InvalidArgument, nil, "capture: invalid device ID %d", deviceID)
	}
	if infos[deviceID].MaxInputChannels == 0 {
		return nil, newError(InvalidArgument, nil, "capture: device %d has no input channels", deviceID)
	}
	return infos[deviceID], nil
}
