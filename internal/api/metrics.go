package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/lumen-core/internal/device"
)

const bytesPerMB = 1024 * 1024

// SystemMetrics is the body of GET /metrics.
type SystemMetrics struct {
	Timestamp     string          `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       RuntimeMetrics  `json:"runtime"`
	WebSocket     WSMetrics       `json:"websocket"`
	MQTT          MQTTMetrics     `json:"mqtt"`
	Devices       DeviceMetrics   `json:"devices"`
	Database      DatabaseMetrics `json:"database"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics reports the broker connection.
type MQTTMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// DeviceMetrics summarises the live devices.
type DeviceMetrics struct {
	Total      int            `json:"total"`
	ByState    map[string]int `json:"by_state"`
	ByType     map[string]int `json:"by_type"`
	Zones      int            `json:"zones"`
	Wireless   int            `json:"wireless"`
	EffectSync int            `json:"effect_sync"`
}

// DatabaseMetrics contains connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Runtime:       runtimeMetrics(),
		WebSocket:     WSMetrics{ConnectedClients: s.hub.ClientCount()},
		MQTT:          s.mqttMetrics(),
		Devices:       deviceMetrics(s.manager.Devices()),
		Database:      s.databaseMetrics(),
	})
}

func runtimeMetrics() RuntimeMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return RuntimeMetrics{
		Goroutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(ms.Alloc) / bytesPerMB,
		MemoryTotalMB: float64(ms.TotalAlloc) / bytesPerMB,
		NumGC:         ms.NumGC,
	}
}

func (s *Server) mqttMetrics() MQTTMetrics {
	if s.mqtt == nil {
		return MQTTMetrics{}
	}
	return MQTTMetrics{Enabled: true, Connected: s.mqtt.IsConnected()}
}

func (s *Server) databaseMetrics() DatabaseMetrics {
	if s.db == nil {
		return DatabaseMetrics{}
	}
	st := s.db.Stats()
	return DatabaseMetrics{
		OpenConnections: st.OpenConnections,
		InUse:           st.InUse,
		Idle:            st.Idle,
		WaitCount:       st.WaitCount,
	}
}

func deviceMetrics(devices []*device.Device) DeviceMetrics {
	m := DeviceMetrics{
		Total:   len(devices),
		ByState: make(map[string]int),
		ByType:  make(map[string]int),
	}
	for _, d := range devices {
		m.ByState[d.State().String()]++
		m.ByType[d.Type()]++
		m.Zones += len(d.Zones())
		if d.Battery() != nil {
			m.Wireless++
		}
		if d.EffectSync() {
			m.EffectSync++
		}
	}
	return m
}
