package device

import (
	"bytes"
	"fmt"
)

// Device modes understood by the driver.
const (
	ModeNormal = 0x00
	ModeDriver = 0x03
)

// DeviceMode reads the current device mode as "mode:param", e.g. "3:0".
func (d *Device) DeviceMode() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readDeviceMode()
}

// readDeviceMode retries while the file reads back empty, up to
// deviceModeRetries extra attempts.
func (d *Device) readDeviceMode() (string, error) {
	var (
		raw []byte
		err error
	)
	for attempt := 0; ; attempt++ {
		raw, err = d.files.Read(FileDeviceMode)
		if err == nil {
			raw = bytes.TrimSpace(raw)
			if len(raw) > 0 {
				break
			}
		}
		if attempt >= deviceModeRetries {
			break
		}
		sleep(controlFileBackoff)
	}
	if err != nil {
		return "", fmt.Errorf("reading device mode: %w", err)
	}
	if len(raw) < 2 {
		return "", fmt.Errorf("%w: got %d bytes", ErrInvalidDeviceMode, len(raw))
	}
	return fmt.Sprintf("%d:%d", raw[0], raw[1]), nil
}

// SetDeviceMode switches the device between normal (0) and driver (3)
// mode. Any other mode is treated as normal and the parameter is
// always 0.
func (d *Device) SetDeviceMode(mode, param int) error {
	return d.do(func() error {
		if d.state == StateClosed {
			return ErrClosed
		}
		return d.setDeviceMode(mode, param)
	})
}

func (d *Device) setDeviceMode(mode, param int) error {
	if mode != ModeNormal && mode != ModeDriver {
		d.logger.Debug("device mode out of range, using normal", "serial", d.serial, "mode", mode)
		mode = ModeNormal
	}
	if param != 0 {
		param = 0
	}
	return d.files.Write(FileDeviceMode, []byte{byte(mode), byte(param)})
}

// SetCustomEffect switches the lighting matrix to custom frames.
func (d *Device) SetCustomEffect() error {
	return d.do(func() error {
		if err := d.checkUsable(); err != nil {
			return err
		}
		return d.files.Write(FileCustomEffect, []byte("1"))
	})
}

// SetKeyRow writes one frame row: the row index followed by RGB
// triplets for each column.
func (d *Device) SetKeyRow(payload []byte) error {
	if len(payload) < 1 || (len(payload)-1)%3 != 0 {
		return fmt.Errorf("%w: key row of %d bytes", ErrInvalidPayload, len(payload))
	}
	return d.do(func() error {
		if err := d.checkUsable(); err != nil {
			return err
		}
		return d.files.Write(FileCustomFrame, payload)
	})
}
