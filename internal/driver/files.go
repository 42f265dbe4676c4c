package driver

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// Control file names.
const (
	fileBrightness    = "matrix_brightness"
	fileDPI           = "dpi"
	fileAvailableDPI  = "available_dpi"
	filePollRate      = "poll_rate"
	fileChargeLevel   = "charge_level"
	fileChargeStatus  = "charge_status"
	fileModuleVersion = "driver/module/version"
)

// effectFile returns the attribute that triggers effect on zone z.
func effectFile(z zone.ID, effect string) string {
	if z == zone.Backlight {
		return "matrix_effect_" + effect
	}
	return string(z) + "_matrix_effect_" + effect
}

func brightnessFile(z zone.ID) string {
	if z == zone.Backlight {
		return fileBrightness
	}
	return string(z) + "_led_brightness"
}

func ledStateFile(z zone.ID) string {
	return string(z) + "_led_state"
}

// levelToByte maps a 0..100 percentage onto the driver's 0..255 scale.
func levelToByte(level float64) int {
	return int(math.Round(level * 255 / 100))
}

// byteToLevel maps the driver's 0..255 scale onto a percentage.
func byteToLevel(v int) float64 {
	return math.Round(float64(v)*100/255*100) / 100
}

func readInt(files device.ControlFiles, name string) (int, error) {
	raw, err := files.Read(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return v, nil
}

func writeInt(files device.ControlFiles, name string, v int) error {
	return files.Write(name, []byte(strconv.Itoa(v)))
}

// encodeDPI packs x and y as two big-endian 16-bit values.
func encodeDPI(x, y int) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint16(b[0:2], uint16(x))
	binary.BigEndian.PutUint16(b[2:4], uint16(y))
	return b
}

func decodeDPI(b []byte) (int, int, error) {
	if len(b) < 4 {
		return 0, 0, fmt.Errorf("%w: dpi has %d bytes", ErrShortRead, len(b))
	}
	return int(binary.BigEndian.Uint16(b[0:2])), int(binary.BigEndian.Uint16(b[2:4])), nil
}

// ReadDriverVersion returns the version of the kernel module bound to
// the device, or "" when it cannot be read.
func ReadDriverVersion(files device.ControlFiles) string {
	raw, err := files.Read(fileModuleVersion)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
