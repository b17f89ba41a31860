package daemon

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics tracks daemon statistics using atomic operations for thread-safety
type Metrics struct {
	EventsReceived   atomic.Int64 // Events published by clients
	EventsBroadcast  atomic.Int64 // Events fanned out after sequencing
	EventsSent       atomic.Int64 // Messages queued to individual clients
	EventsDropped    atomic.Int64 // Messages lost to full queues
	StaleClients     atomic.Int64 // Clients removed for missing pongs
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

func (m *Metrics) IncEventsReceived()  { m.EventsReceived.Add(1) }
func (m *Metrics) IncEventsBroadcast() { m.EventsBroadcast.Add(1) }
func (m *Metrics) IncEventsSent()      { m.EventsSent.Add(1) }
func (m *Metrics) IncEventsDropped()   { m.EventsDropped.Add(1) }
func (m *Metrics) IncStaleClients()    { m.StaleClients.Add(1) }

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsReceived   int64     `json:"events_received"`
	EventsBroadcast  int64     `json:"events_broadcast"`
	EventsSent       int64     `json:"events_sent"`
	EventsDropped    int64     `json:"events_dropped"`
	StaleClients     int64     `json:"stale_clients"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsReceived:   m.EventsReceived.Load(),
		EventsBroadcast:  m.EventsBroadcast.Load(),
		EventsSent:       m.EventsSent.Load(),
		EventsDropped:    m.EventsDropped.Load(),
		StaleClients:     m.StaleClients.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).Round(time.Second).String(),
	}
}

// LogValue renders the snapshot as a slog group
func (s MetricsSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("received", s.EventsReceived),
		slog.Int64("broadcast", s.EventsBroadcast),
		slog.Int64("sent", s.EventsSent),
		slog.Int64("dropped", s.EventsDropped),
		slog.Int64("stale_clients", s.StaleClients),
		slog.Int("clients", int(s.ConnectedClients)),
		slog.String("uptime", s.Uptime),
	)
}
