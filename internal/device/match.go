package device

import (
	"fmt"
	"regexp"
)

// hidIDPattern is the shape of a HID bus identifier: bus, vendor,
// product and instance, e.g. "0003:1532:0084.0007".
var hidIDPattern = regexp.MustCompile(`^[0-9A-F]{4}:([0-9A-F]{4}):([0-9A-F]{4})\.[0-9A-F]{4}$`)

// Match reports whether the HID device hidID belongs to the model and
// has been bound by the driver, which is signalled by the presence of a
// device_type attribute.
func Match(p Profile, hidID string, files ControlFiles) bool {
	m := hidIDPattern.FindStringSubmatch(hidID)
	if m == nil {
		return false
	}
	if m[1] != fmt.Sprintf("%04X", p.VendorID) || m[2] != fmt.Sprintf("%04X", p.ProductID) {
		return false
	}
	return files.Exists(FileDeviceType)
}
