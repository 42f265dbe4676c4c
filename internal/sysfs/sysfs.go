package sysfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Dir is the control-file directory a kernel driver exposes for one
// bound device. Every attribute is a small file that is read or written
// whole.
type Dir struct {
	path string
}

// NewDir returns a Dir rooted at path. The directory is not checked.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// File returns the full path of the named attribute.
func (d *Dir) File(name string) string {
	return filepath.Join(d.path, name)
}

// Exists reports whether the named attribute exists.
func (d *Dir) Exists(name string) bool {
	_, err := os.Stat(d.File(name))
	return err == nil
}

// Read returns the raw contents of the named attribute.
func (d *Dir) Read(name string) ([]byte, error) {
	b, err := os.ReadFile(d.File(name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return b, nil
}

// ReadString returns the attribute with surrounding whitespace trimmed.
func (d *Dir) ReadString(name string) (string, error) {
	b, err := d.Read(name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// ReadInt parses the attribute as a decimal integer.
func (d *Dir) ReadInt(name string) (int, error) {
	s, err := d.ReadString(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return v, nil
}

// Write writes payload to an existing attribute. Attributes are never
// created; writing one the driver does not expose fails with an error
// matching fs.ErrNotExist.
func (d *Dir) Write(name string, payload []byte) error {
	f, err := os.OpenFile(d.File(name), os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close() //nolint:errcheck // The write error is more useful
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	return nil
}

// WriteString writes s to an existing attribute.
func (d *Dir) WriteString(name, s string) error {
	return d.Write(name, []byte(s))
}

// List returns the names of every regular attribute in the directory,
// sorted.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.path, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// IsNotExist reports whether err means the attribute is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
