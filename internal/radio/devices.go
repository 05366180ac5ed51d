// SPDX-License-Identifier: MIT
package radio

import "fmt"

// ListDevices enumerates every device driver's advertised hardware through
// the given Driver, used by the CLI's list-drivers mode and the driver
// picker.
func ListDevices(driver Driver) ([]DeviceInfo, error) {
	infos, err := driver.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("radio: enumerate: %w", err)
	}
	return infos, nil
}

// FindDriver returns the DeviceInfo whose Driver field equals name, or an
// error if no enumerated device matches it.
func FindDriver(infos []DeviceInfo, name string) (DeviceInfo, error) {
	for _, info := range infos {
		if info.Driver == name {
			return info, nil
		}
	}
	return DeviceInfo{}, fmt.Errorf("%w: %s", ErrNoMatchingDevice, name)
}
