package sysfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDir(t *testing.T, files map[string]string) *Dir {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o600))
	}
	return NewDir(root)
}

func TestDir_Read(t *testing.T) {
	d := newTestDir(t, map[string]string{
		"device_serial": "PM1234\n",
		"poll_rate":     " 500 \n",
		"bad_int":       "fast",
	})

	s, err := d.ReadString("device_serial")
	require.NoError(t, err)
	assert.Equal(t, "PM1234", s)

	n, err := d.ReadInt("poll_rate")
	require.NoError(t, err)
	assert.Equal(t, 500, n)

	_, err = d.ReadInt("bad_int")
	assert.Error(t, err)

	_, err = d.Read("missing")
	assert.True(t, IsNotExist(err))
}

func TestDir_Write(t *testing.T) {
	d := newTestDir(t, map[string]string{"matrix_effect_static": "old-contents"})

	require.NoError(t, d.Write("matrix_effect_static", []byte{0xff, 0x00, 0x10}))
	got, err := d.Read("matrix_effect_static")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x00, 0x10}, got, "write truncates")

	err = d.WriteString("matrix_effect_wave", "1")
	assert.True(t, IsNotExist(err), "write must not create attributes")
	assert.False(t, d.Exists("matrix_effect_wave"))
}

func TestDir_List(t *testing.T) {
	d := newTestDir(t, map[string]string{"b": "", "a": ""})
	require.NoError(t, os.Mkdir(filepath.Join(d.Path(), "power"), 0o750))

	names, err := d.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	_, err = NewDir(filepath.Join(d.Path(), "nope")).List()
	assert.Error(t, err)
}
