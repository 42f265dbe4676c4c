package driver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/effect"
	"github.com/nerrad567/lumen-core/internal/zone"
)

type writeFunc func(payload []byte) error

// effectSpec describes one effect the driver can trigger: the attribute
// suffix it is written to and how its arguments become a payload.
type effectSpec struct {
	effect string
	file   string
	setter func(write writeFunc) effect.Setter
}

func trigger(write writeFunc) effect.Setter {
	return effect.Setter0(func() error { return write([]byte("1")) })
}

func direction(write writeFunc) effect.Setter {
	return effect.Setter1(func(dir int) error {
		return write([]byte(strconv.Itoa(dir)))
	})
}

func rgb(write writeFunc) effect.Setter {
	return effect.Setter3(func(r, g, b uint8) error { return write([]byte{r, g, b}) })
}

// speedByte encodes a speed as the single byte the driver expects.
func speedByte(speed int) (byte, error) {
	if speed < 0 || speed > 255 {
		return 0, fmt.Errorf("%w: speed %d", effect.ErrArgumentRange, speed)
	}
	return byte(speed), nil
}

func speedRGB(write writeFunc) effect.Setter {
	return effect.Setter4(func(r, g, b uint8, speed int) error {
		s, err := speedByte(speed)
		if err != nil {
			return err
		}
		return write([]byte{s, r, g, b})
	})
}

var effectSpecs = []effectSpec{
	{effect.None, "none", trigger},
	{effect.Spectrum, "spectrum", trigger},
	{effect.Static, "static", rgb},
	{effect.Wave, "wave", direction},
	{effect.Wheel, "wheel", direction},
	{effect.Reactive, "reactive", speedRGB},
	{effect.BreathRandom, "breath", trigger},
	{effect.BreathSingle, "breath", rgb},
	{effect.BreathDual, "breath", func(write writeFunc) effect.Setter {
		return effect.Setter6(func(r1, g1, b1, r2, g2, b2 uint8) error {
			return write([]byte{r1, g1, b1, r2, g2, b2})
		})
	}},
	{effect.BreathTriple, "breath", func(write writeFunc) effect.Setter {
		return effect.Setter9(func(c [9]uint8) error { return write(c[:]) })
	}},
	{effect.StarlightRandom, "starlight", func(write writeFunc) effect.Setter {
		return effect.Setter1(func(speed int) error {
			s, err := speedByte(speed)
			if err != nil {
				return err
			}
			return write([]byte{s})
		})
	}},
	{effect.StarlightSingle, "starlight", speedRGB},
	{effect.StarlightDual, "starlight", func(write writeFunc) effect.Setter {
		return effect.Setter7(func(r1, g1, b1, r2, g2, b2 uint8, speed int) error {
			s, err := speedByte(speed)
			if err != nil {
				return err
			}
			return write([]byte{s, r1, g1, b1, r2, g2, b2})
		})
	}},
	{effect.Blinking, "blinking", rgb},
	{effect.Pulsate, "pulsate", trigger},
}

// Build inspects the control files of one bound device and returns its
// capabilities. Only features whose attribute exists are declared.
func Build(files device.ControlFiles) device.Capabilities {
	caps := device.Capabilities{
		Methods:    map[string]bool{},
		Effects:    effect.NewTable(),
		Brightness: map[zone.ID]device.BrightnessControl{},
		Active:     map[zone.ID]func(on bool) error{},
	}

	for _, z := range zone.All {
		buildZone(files, z, &caps)
	}
	buildSensor(files, &caps)
	buildInfo(files, &caps)
	return caps
}

func buildZone(files device.ControlFiles, z zone.ID, caps *device.Capabilities) {
	for _, spec := range effectSpecs {
		name := effectFile(z, spec.file)
		if !files.Exists(name) {
			continue
		}
		caps.Effects.Register(z, spec.effect, spec.setter(func(payload []byte) error {
			return files.Write(name, payload)
		}))
	}

	if files.Exists(effectFile(z, "static")) {
		if z == zone.Backlight {
			caps.Methods[device.MethodSetStaticEffect] = true
		} else {
			caps.Methods[device.ZoneMethod(z, "static")] = true
		}
	}

	if name := brightnessFile(z); files.Exists(name) {
		caps.Brightness[z] = device.BrightnessControl{
			Set: func(level float64) error {
				return writeInt(files, name, levelToByte(level))
			},
			Get: func() (float64, error) {
				v, err := readInt(files, name)
				if err != nil {
					return 0, err
				}
				return byteToLevel(v), nil
			},
		}
	}

	if z != zone.Backlight {
		if name := ledStateFile(z); files.Exists(name) {
			caps.Methods[device.ZoneMethod(z, "active")] = true
			caps.Active[z] = func(on bool) error {
				v := 0
				if on {
					v = 1
				}
				return writeInt(files, name, v)
			}
		}
	}
}

func buildSensor(files device.ControlFiles, caps *device.Capabilities) {
	if files.Exists(fileDPI) {
		caps.Methods[device.MethodSetDPIXY] = true
		caps.Methods[device.MethodGetDPIXY] = true
		caps.SetDPI = func(x, y int) error {
			return files.Write(fileDPI, encodeDPI(x, y))
		}
		caps.GetDPI = func() (int, int, error) {
			raw, err := files.Read(fileDPI)
			if err != nil {
				return 0, 0, err
			}
			return decodeDPI(raw)
		}
	}
	if files.Exists(fileAvailableDPI) {
		caps.Methods[device.MethodAvailableDPI] = true
	}

	if files.Exists(filePollRate) {
		caps.Methods[device.MethodSetPollRate] = true
		caps.SetPollRate = func(rate int) error {
			return writeInt(files, filePollRate, rate)
		}
		caps.GetPollRate = func() (int, error) {
			return readInt(files, filePollRate)
		}
	}
}

func buildInfo(files device.ControlFiles, caps *device.Capabilities) {
	if files.Exists(device.FileFirmwareVersion) {
		caps.Firmware = func() (string, error) {
			raw, err := files.Read(device.FileFirmwareVersion)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(raw)), nil
		}
	}

	if files.Exists(fileChargeLevel) {
		caps.BatteryLevel = func() (float64, error) {
			v, err := readInt(files, fileChargeLevel)
			if err != nil {
				return 0, err
			}
			return byteToLevel(v), nil
		}
	}
	if files.Exists(fileChargeStatus) {
		caps.Charging = func() (bool, error) {
			v, err := readInt(files, fileChargeStatus)
			if err != nil {
				return false, err
			}
			return v == 1, nil
		}
	}
}
