package device

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Control file names read or written directly by the device.
const (
	FileSerial           = "device_serial"
	FileDeviceMode       = "device_mode"
	FileDeviceType       = "device_type"
	FileFirmwareVersion  = "firmware_version"
	FileCustomEffect     = "matrix_effect_custom"
	FileCustomFrame      = "matrix_custom_frame"
	serialAttempts       = 5
	deviceModeRetries    = 3
	controlFileBackoff   = 100 * time.Millisecond
	fallbackSerialFormat = "UNKNOWN_%04X%04X_%04d"
)

// sleep is replaced in tests.
var sleep = time.Sleep

var serialPattern = regexp.MustCompile(`^[0-9A-Z]+$`)

// ValidSerial reports whether s is a usable hardware serial: one or
// more upper-case letters and digits.
func ValidSerial(s string) bool {
	return serialPattern.MatchString(s)
}

// FallbackSerial builds the placeholder serial for a device whose
// hardware serial is missing or invalid.
func FallbackSerial(vid, pid uint16, index int) string {
	return fmt.Sprintf(fallbackSerialFormat, vid, pid, index)
}

type modelKey struct {
	vid, pid uint16
}

// SerialCounter hands out placeholder indices per model. One counter is
// shared by every device the daemon constructs.
//
// Thread Safety:
//   - Next is safe for concurrent use.
type SerialCounter struct {
	mu   sync.Mutex
	next map[modelKey]int
}

// NewSerialCounter creates a counter starting at zero for every model.
func NewSerialCounter() *SerialCounter {
	return &SerialCounter{next: make(map[modelKey]int)}
}

// Next returns the next unused index for the model.
func (c *SerialCounter) Next(vid, pid uint16) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := modelKey{vid, pid}
	n := c.next[k]
	c.next[k] = n + 1
	return n
}

// legacyStorageNames pins the persistence section of models that predate
// usable serials.
var legacyStorageNames = map[uint16]string{
	0x0f07: "ChromaMug",
	0x0013: "Orochi2011",
	0x0016: "DeathAdder35G",
	0x0029: "DeathAdder35GBlack",
	0x0024: "Mamba2012",
	0x0025: "Mamba2012",
}

// StorageName returns the persistence section for a device.
func StorageName(p Profile, serial string) string {
	if p.StorageName != "" {
		return p.StorageName
	}
	if name, ok := legacyStorageNames[p.ProductID]; ok {
		return name
	}
	return serial
}

// readSerial reads the serial attribute, retrying while it is empty.
// Read and decode failures are logged and retried too.
func readSerial(files ControlFiles, logger Logger) string {
	for attempt := 1; attempt <= serialAttempts; attempt++ {
		raw, err := files.Read(FileSerial)
		switch {
		case err != nil:
			logger.Warn("cannot read serial", "attempt", attempt, "error", err)
		case !utf8.Valid(raw):
			logger.Warn("serial is not valid text", "attempt", attempt)
		default:
			if s := strings.TrimSpace(string(raw)); s != "" {
				return s
			}
		}
		if attempt < serialAttempts {
			sleep(controlFileBackoff)
		}
	}
	return ""
}

// resolveSerial returns the hardware serial, or a placeholder when the
// hardware does not report a valid one.
func resolveSerial(files ControlFiles, p Profile, counter *SerialCounter, logger Logger) string {
	serial := readSerial(files, logger)
	if !ValidSerial(serial) {
		fallback := FallbackSerial(p.VendorID, p.ProductID, counter.Next(p.VendorID, p.ProductID))
		logger.Warn("invalid serial, using placeholder", "serial", serial, "placeholder", fallback)
		serial = fallback
	}
	return strings.ReplaceAll(serial, " ", "_")
}
