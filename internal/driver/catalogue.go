package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
)

// Model is one catalogue entry.
type Model struct {
	Profile device.Profile

	// EventFiles matches the names of the model's input event nodes.
	// Nil when the model has none.
	EventFiles *regexp.Regexp
}

type modelKey struct {
	vid, pid uint16
}

// Catalogue is the set of supported hardware models.
//
// Thread Safety: read-only after NewCatalogue; safe for concurrent use.
type Catalogue struct {
	models map[modelKey]Model
}

// NewCatalogue builds a catalogue from configured models.
//
// Parameters:
//   - models: Model entries from the devices.models configuration
//
// Returns:
//   - *Catalogue: The catalogue
//   - error: ErrInvalidModel for a duplicate entry or a bad event file pattern
func NewCatalogue(models []config.ModelConfig) (*Catalogue, error) {
	c := &Catalogue{models: make(map[modelKey]Model, len(models))}
	for _, m := range models {
		model, err := modelFromConfig(m)
		if err != nil {
			return nil, err
		}
		key := modelKey{m.VendorID, m.ProductID}
		if existing, ok := c.models[key]; ok {
			return nil, fmt.Errorf("%w: %s and %s share %04X:%04X",
				ErrInvalidModel, existing.Profile.Name, m.Name, m.VendorID, m.ProductID)
		}
		c.models[key] = model
	}
	return c, nil
}

func modelFromConfig(m config.ModelConfig) (Model, error) {
	images := device.Images{Top: m.TopImage, Side: m.SideImage, Perspective: m.PerspectiveImage}
	if images.Top == "" {
		images.Top = m.Image
	}
	if images.Side == "" {
		images.Side = m.Image
	}
	if images.Perspective == "" {
		images.Perspective = m.Image
	}

	model := Model{
		Profile: device.Profile{
			Name:               m.Name,
			Type:               m.Type,
			VendorID:           m.VendorID,
			ProductID:          m.ProductID,
			StorageName:        m.StorageName,
			DPIMax:             m.DPIMax,
			PollRates:          append([]int(nil), m.PollRates...),
			DriverMode:         m.DriverMode,
			DedicatedMacroKeys: m.DedicatedMacroKeys,
			MatrixDims:         [2]int{m.MatrixRows, m.MatrixCols},
			Image:              m.Image,
			Images:             images,
		},
	}
	if m.EventFilePattern != "" {
		re, err := regexp.Compile(m.EventFilePattern)
		if err != nil {
			return Model{}, fmt.Errorf("%w: %s event file pattern: %v", ErrInvalidModel, m.Name, err)
		}
		model.EventFiles = re
	}
	return model, nil
}

// Len returns the number of models.
func (c *Catalogue) Len() int {
	return len(c.models)
}

// Lookup returns the model with the given vendor and product IDs.
func (c *Catalogue) Lookup(vid, pid uint16) (Model, bool) {
	m, ok := c.models[modelKey{vid, pid}]
	return m, ok
}

// Match finds the model a bound HID interface belongs to.
//
// Returns:
//   - Model: The matching entry
//   - error: ErrUnknownModel when no entry matches or the driver has
//     not bound the interface
func (c *Catalogue) Match(hidID string, files device.ControlFiles) (Model, error) {
	parts := strings.Split(strings.SplitN(hidID, ".", 2)[0], ":")
	if len(parts) == 3 {
		var vid, pid uint16
		if _, err := fmt.Sscanf(parts[1]+" "+parts[2], "%04X %04X", &vid, &pid); err == nil {
			if m, ok := c.Lookup(vid, pid); ok && device.Match(m.Profile, hidID, files) {
				return m, nil
			}
		}
	}
	return Model{}, fmt.Errorf("%w: %s", ErrUnknownModel, hidID)
}

// FindEventFiles returns the full paths of the model's input event nodes
// under root, sorted. A model without a pattern has none.
func (m Model) FindEventFiles(root string) ([]string, error) {
	if m.EventFiles == nil {
		return nil, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	var out []string
	for _, e := range entries {
		if m.EventFiles.MatchString(e.Name()) {
			out = append(out, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
