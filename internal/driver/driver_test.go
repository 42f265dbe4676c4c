package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/effect"
	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
	"github.com/nerrad567/lumen-core/internal/sysfs"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// fixture creates a control directory holding the named attributes.
func fixture(t *testing.T, files map[string]string) *sysfs.Dir {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return sysfs.NewDir(dir)
}

func readFile(t *testing.T, d *sysfs.Dir, name string) []byte {
	t.Helper()
	b, err := d.Read(name)
	require.NoError(t, err)
	return b
}

func call(t *testing.T, caps device.Capabilities, z zone.ID, name string, args ...int) {
	t.Helper()
	s, ok := caps.Effects.Lookup(z, name)
	require.True(t, ok, "no setter for %s/%s", z, name)
	require.NoError(t, s.Call(args...))
}

func TestBuild_Keyboard(t *testing.T) {
	d := fixture(t, map[string]string{
		"matrix_effect_none":        "",
		"matrix_effect_spectrum":    "",
		"matrix_effect_static":      "",
		"matrix_effect_wave":        "",
		"matrix_effect_reactive":    "",
		"matrix_effect_breath":      "",
		"matrix_effect_starlight":   "",
		"matrix_brightness":         "255\n",
		"logo_matrix_effect_static": "",
		"logo_led_brightness":       "0",
		"logo_led_state":            "0",
		device.FileFirmwareVersion:  "v1.05\n",
		device.FileSerial:           "XX0000000001\n",
	})

	caps := Build(d)

	assert.True(t, caps.Has(device.MethodSetStaticEffect))
	assert.True(t, caps.Has("set_logo_static"))
	assert.True(t, caps.Has("set_logo_active"))
	assert.False(t, caps.Has(device.MethodSetDPIXY))
	assert.Equal(t, []zone.ID{zone.Backlight, zone.Logo}, caps.PresentZones())
	assert.Nil(t, caps.SetDPI)
	assert.Nil(t, caps.BatteryLevel)

	assert.Equal(t, []string{
		effect.BreathDual, effect.BreathRandom, effect.BreathSingle, effect.BreathTriple,
		effect.None, effect.Reactive, effect.Spectrum,
		effect.StarlightDual, effect.StarlightRandom, effect.StarlightSingle,
		effect.Static, effect.Wave,
	}, caps.Effects.Effects(zone.Backlight))

	call(t, caps, zone.Backlight, effect.Static, 255, 128, 0)
	assert.Equal(t, []byte{255, 128, 0}, readFile(t, d, "matrix_effect_static"))

	call(t, caps, zone.Backlight, effect.Wave, 2)
	assert.Equal(t, []byte("2"), readFile(t, d, "matrix_effect_wave"))

	call(t, caps, zone.Backlight, effect.Reactive, 1, 2, 3, 4)
	assert.Equal(t, []byte{4, 1, 2, 3}, readFile(t, d, "matrix_effect_reactive"))

	call(t, caps, zone.Backlight, effect.StarlightDual, 1, 2, 3, 4, 5, 6, 7)
	assert.Equal(t, []byte{7, 1, 2, 3, 4, 5, 6}, readFile(t, d, "matrix_effect_starlight"))

	call(t, caps, zone.Backlight, effect.BreathRandom)
	assert.Equal(t, []byte("1"), readFile(t, d, "matrix_effect_breath"))

	call(t, caps, zone.Logo, effect.Static, 9, 8, 7)
	assert.Equal(t, []byte{9, 8, 7}, readFile(t, d, "logo_matrix_effect_static"))

	require.NoError(t, caps.Brightness[zone.Backlight].Set(50))
	assert.Equal(t, []byte("128"), readFile(t, d, "matrix_brightness"))
	level, err := caps.Brightness[zone.Backlight].Get()
	require.NoError(t, err)
	assert.InDelta(t, 50.2, level, 0.01)

	require.NoError(t, caps.Active[zone.Logo](true))
	assert.Equal(t, []byte("1"), readFile(t, d, "logo_led_state"))

	fw, err := caps.Firmware()
	require.NoError(t, err)
	assert.Equal(t, "v1.05", fw)
}

func TestBuild_RejectsSpeedOutOfRange(t *testing.T) {
	d := fixture(t, map[string]string{
		"matrix_effect_reactive":  "",
		"matrix_effect_starlight": "",
	})
	caps := Build(d)

	tests := []struct {
		effect string
		args   []int
	}{
		{effect.Reactive, []int{1, 2, 3, 256}},
		{effect.StarlightRandom, []int{-1}},
		{effect.StarlightRandom, []int{300}},
		{effect.StarlightSingle, []int{1, 2, 3, 1000}},
		{effect.StarlightDual, []int{1, 2, 3, 4, 5, 6, 256}},
	}
	for _, tt := range tests {
		s, ok := caps.Effects.Lookup(zone.Backlight, tt.effect)
		require.True(t, ok, tt.effect)
		assert.ErrorIs(t, s.Call(tt.args...), effect.ErrArgumentRange, "%s %v", tt.effect, tt.args)
	}
	assert.Empty(t, readFile(t, d, "matrix_effect_reactive"), "nothing written")
	assert.Empty(t, readFile(t, d, "matrix_effect_starlight"), "nothing written")

	call(t, caps, zone.Backlight, effect.StarlightRandom, 255)
	assert.Equal(t, []byte{255}, readFile(t, d, "matrix_effect_starlight"))
}

func TestBuild_WirelessMouse(t *testing.T) {
	d := fixture(t, map[string]string{
		"dpi":                           string([]byte{0x07, 0x08, 0x03, 0x20}),
		"poll_rate":                     "500\n",
		"charge_level":                  "51\n",
		"charge_status":                 "0\n",
		"scroll_matrix_effect_static":   "",
		"scroll_matrix_effect_spectrum": "",
	})

	caps := Build(d)

	assert.True(t, caps.Has(device.MethodSetDPIXY))
	assert.True(t, caps.Has(device.MethodGetDPIXY))
	assert.True(t, caps.Has(device.MethodSetPollRate))
	assert.Equal(t, []zone.ID{zone.Scroll}, caps.PresentZones())

	x, y, err := caps.GetDPI()
	require.NoError(t, err)
	assert.Equal(t, [2]int{1800, 800}, [2]int{x, y})

	require.NoError(t, caps.SetDPI(1600, 400))
	assert.Equal(t, []byte{0x06, 0x40, 0x01, 0x90}, readFile(t, d, "dpi"))

	require.NoError(t, caps.SetPollRate(1000))
	rate, err := caps.GetPollRate()
	require.NoError(t, err)
	assert.Equal(t, 1000, rate)

	level, err := caps.BatteryLevel()
	require.NoError(t, err)
	assert.Equal(t, 20.0, level)
	charging, err := caps.Charging()
	require.NoError(t, err)
	assert.False(t, charging)
}

func TestDecodeDPI_Short(t *testing.T) {
	_, _, err := decodeDPI([]byte{1, 2})
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestReadDriverVersion(t *testing.T) {
	d := fixture(t, map[string]string{fileModuleVersion: "3.10.1\n"})
	assert.Equal(t, "3.10.1", ReadDriverVersion(d))
	assert.Equal(t, "", ReadDriverVersion(fixture(t, nil)))
}

func testModels() []config.ModelConfig {
	return []config.ModelConfig{
		{
			Name:             "DeathAdder Elite",
			Type:             "mouse",
			VendorID:         0x1532,
			ProductID:        0x005C,
			DPIMax:           16000,
			Image:            "https://example.invalid/da.png",
			EventFilePattern: `DeathAdder_Elite.*-event-mouse$`,
		},
		{
			Name:       "BlackWidow Chroma",
			Type:       "keyboard",
			VendorID:   0x1532,
			ProductID:  0x0203,
			DriverMode: true,
		},
	}
}

func TestCatalogue_Match(t *testing.T) {
	c, err := NewCatalogue(testModels())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	bound := fixture(t, map[string]string{device.FileDeviceType: "Razer DeathAdder Elite\n"})

	m, err := c.Match("0003:1532:005C.0004", bound)
	require.NoError(t, err)
	assert.Equal(t, "DeathAdder Elite", m.Profile.Name)
	assert.Equal(t, "https://example.invalid/da.png", m.Profile.Images.Side)

	_, err = c.Match("0003:1532:005C.0004", fixture(t, nil))
	assert.ErrorIs(t, err, ErrUnknownModel, "interface not bound by the driver")

	_, err = c.Match("0003:1532:0999.0004", bound)
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, err = c.Match("garbage", bound)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestNewCatalogue_Invalid(t *testing.T) {
	dup := append(testModels(), testModels()[0])
	_, err := NewCatalogue(dup)
	assert.ErrorIs(t, err, ErrInvalidModel)

	bad := testModels()
	bad[0].EventFilePattern = "("
	_, err = NewCatalogue(bad)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestModel_FindEventFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"usb-Razer_Razer_DeathAdder_Elite-event-mouse",
		"usb-Razer_Razer_DeathAdder_Elite-if01-event-kbd",
		"usb-Logitech_Keyboard-event-kbd",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}

	c, err := NewCatalogue(testModels())
	require.NoError(t, err)
	m, _ := c.Lookup(0x1532, 0x005C)

	files, err := m.FindEventFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "usb-Razer_Razer_DeathAdder_Elite-event-mouse")}, files)

	files, err = m.FindEventFiles(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)

	kb, _ := c.Lookup(0x1532, 0x0203)
	files, err = kb.FindEventFiles(root)
	require.NoError(t, err)
	assert.Nil(t, files)
}
