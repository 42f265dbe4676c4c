package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/lumen-core/internal/daemon"
	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// DeviceInfo is the static description of a live device.
type DeviceInfo struct {
	Serial             string               `json:"serial"`
	Name               string               `json:"name"`
	Type               string               `json:"type"`
	HIDID              string               `json:"hid_id"`
	VidPid             []int                `json:"vid_pid"`
	DriverVersion      string               `json:"driver_version"`
	FirmwareVersion    string               `json:"firmware_version,omitempty"`
	Image              string               `json:"image,omitempty"`
	Images             device.Images        `json:"images"`
	MatrixDims         [2]int               `json:"matrix_dims"`
	DedicatedMacroKeys bool                 `json:"dedicated_macro_keys"`
	EventFiles         []string             `json:"event_files"`
	PollRates          []int                `json:"poll_rates,omitempty"`
	Effects            map[zone.ID][]string `json:"effects"`
}

// ZoneResponse is the state of one zone plus the effects it supports.
type ZoneResponse struct {
	Zone zone.ID `json:"zone"`
	daemon.ZoneStatus
	Effects []string `json:"effects"`
}

// lookupDevice resolves the {serial} URL parameter, writing the error
// response itself when the device is unknown.
func (s *Server) lookupDevice(w http.ResponseWriter, r *http.Request) (*device.Device, bool) {
	d, err := s.manager.Get(chi.URLParam(r, "serial"))
	if err != nil {
		writeDeviceError(w, err)
		return nil, false
	}
	return d, true
}

// handleListDevices returns the status of every live device.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.manager.Devices()
	statuses := make([]daemon.Status, 0, len(devices))
	for _, d := range devices {
		statuses = append(statuses, daemon.StatusOf(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": statuses,
		"count":   len(statuses),
	})
}

// handleDiscover scans the HID root for supported hardware.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	added, err := s.manager.Discover(r.Context())
	if err != nil {
		s.logger.Warn("discovery completed with errors", "added", added, "error", err)
		writeJSON(w, http.StatusOK, map[string]any{
			"added":  added,
			"errors": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"added": added})
}

// handleGetDevice returns the status of one device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, daemon.StatusOf(d))
}

// handleRemoveDevice closes a device and drops it from the daemon.
func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")
	if err := s.manager.Remove(serial); err != nil {
		writeDeviceError(w, err)
		return
	}
	s.logger.Info("device removed via API", "serial", serial)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetDeviceInfo returns the static description of a device.
func (s *Server) handleGetDeviceInfo(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}

	profile := d.Profile()
	info := DeviceInfo{
		Serial:             d.Serial(),
		Name:               d.Name(),
		Type:               d.Type(),
		HIDID:              d.HIDID(),
		VidPid:             d.VidPid(),
		DriverVersion:      d.DriverVersion(),
		Image:              d.DeviceImage(),
		Images:             profile.Images,
		MatrixDims:         d.MatrixDims(),
		DedicatedMacroKeys: d.HasDedicatedMacroKeys(),
		EventFiles:         d.EventFiles(),
		PollRates:          d.PollRates(),
		Effects:            make(map[zone.ID][]string),
	}
	if fw, err := d.FirmwareVersion(); err == nil {
		info.FirmwareVersion = fw
	} else {
		s.logger.Debug("firmware version unavailable", "serial", d.Serial(), "error", err)
	}
	for _, z := range d.Zones() {
		info.Effects[z] = d.Effects(z)
	}

	writeJSON(w, http.StatusOK, info)
}

// handleGetZone returns the lighting state of one zone.
func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	z, err := zone.Parse(chi.URLParam(r, "zone"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	zs, err := d.ZoneState(z)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ZoneResponse{
		Zone: z,
		ZoneStatus: daemon.ZoneStatus{
			Effect:     zs.Effect,
			Colors:     zs.Colors.Ints(zone.PaletteLen),
			Speed:      zs.Speed,
			WaveDir:    zs.WaveDir,
			Brightness: zs.Brightness,
			Active:     zs.Active,
		},
		Effects: d.Effects(z),
	})
}

// handleGetDPI returns the current DPI of a device that can set it.
func (s *Server) handleGetDPI(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	if !d.SupportsDPI() {
		writeDeviceError(w, fmt.Errorf("%w: dpi", device.ErrNotSupported))
		return
	}
	x, y := d.DPI()
	writeJSON(w, http.StatusOK, map[string]any{"dpi": []int{x, y}})
}

// handleGetPollRate returns the current and the supported poll rates.
func (s *Server) handleGetPollRate(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	rates := d.PollRates()
	if len(rates) == 0 {
		writeDeviceError(w, fmt.Errorf("%w: poll rate", device.ErrNotSupported))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"poll_rate": d.PollRate(),
		"supported": rates,
	})
}

// handleGetMode returns the device mode as "mode:param".
func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	mode, err := d.DeviceMode()
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode})
}

// decodeCommand reads an optional JSON body into a command. Action and
// zone always come from the route, never from the body.
func decodeCommand(r *http.Request, action string) (daemon.Command, error) {
	var cmd daemon.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
		return daemon.Command{}, fmt.Errorf("%w: %v", daemon.ErrInvalidCommand, err)
	}
	cmd.Action = action
	cmd.Zone = chi.URLParam(r, "zone")
	return cmd, nil
}

// command returns a handler executing action against the {serial} device
// and responding with its status afterwards. Bodies use the daemon.Command
// JSON fields:
//
//	effect       {"effect": "wave", "args": [1]}
//	brightness   {"value": 75}
//	active       {"on": true}
//	dpi          {"dpi": [800, 800]}
//	poll_rate    {"rate": 500}
//	device_mode  {"mode": [3, 0]}
//	effect_sync  {"on": false}
//	key_row      {"row": "<base64 row payload>"}
func (s *Server) command(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serial := chi.URLParam(r, "serial")
		cmd, err := decodeCommand(r, action)
		if err != nil {
			writeDeviceError(w, err)
			return
		}
		if err := s.manager.Execute(serial, cmd); err != nil {
			s.logger.Debug("command rejected", "serial", serial, "action", action, "error", err)
			writeDeviceError(w, err)
			return
		}
		d, err := s.manager.Get(serial)
		if err != nil {
			writeDeviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, daemon.StatusOf(d))
	}
}
