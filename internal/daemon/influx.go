package daemon

import (
	"time"

	"github.com/nerrad567/lumen-core/internal/event"
)

// MetricsWriter is the telemetry side of the InfluxDB client.
// *influxdb.Client satisfies it.
type MetricsWriter interface {
	WriteEffect(serial, zone, effect string, args []int, at time.Time)
	WriteBrightness(serial, zone string, level float64, at time.Time)
	WriteSensor(serial string, dpiX, dpiY, pollRate int)
	WriteBattery(serial string, level float64, charging bool)
}

// InfluxSink records device events as telemetry points.
type InfluxSink struct {
	w      MetricsWriter
	lookup LookupFunc
}

// NewInfluxSink creates a sink writing through w. lookup supplies the
// DPI and poll rate recorded when a device comes up; it may be nil.
func NewInfluxSink(w MetricsWriter, lookup LookupFunc) *InfluxSink {
	return &InfluxSink{w: w, lookup: lookup}
}

// Notify implements event.Subscriber.
func (s *InfluxSink) Notify(e event.Event) {
	switch e.Kind {
	case event.KindEffect:
		s.w.WriteEffect(e.Source, string(e.Zone), e.Effect, e.Args, e.Time)
	case event.KindBrightness:
		s.w.WriteBrightness(e.Source, string(e.Zone), e.Value, e.Time)
	case event.KindBattery:
		s.w.WriteBattery(e.Source, e.Value, e.State == "charging")
	case event.KindState:
		if s.lookup == nil {
			return
		}
		d, err := s.lookup(e.Source)
		if err != nil || !d.SupportsDPI() {
			return
		}
		x, y := d.DPI()
		s.w.WriteSensor(e.Source, x, y, d.PollRate())
	}
}
