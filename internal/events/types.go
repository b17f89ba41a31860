package events

import (
	"io"
	"time"

	"github.com/bytedance/sonic"
)

// ProtocolVersion is stamped on every wire message
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	EventDatabaseChanged EventType = "db_changed"
	EventPing            EventType = "ping"
	EventPong            EventType = "pong"
)

// Event represents a change notification for a collection
type Event struct {
	Type       EventType
	Collection string    // Which collection was modified, "" for all
	DocumentID string    `json:",omitempty"` // Set when a single document changed
	Source     string    `json:",omitempty"` // Peer id of the publishing process
	Timestamp  time.Time // When the event occurred
	SequenceID int64     // Monotonically increasing sequence number for ordering
}

// SubscribeMessage is sent by clients to subscribe to specific collection updates
type SubscribeMessage struct {
	Collection string // "" = all collections
}

// Message wraps events and control messages for wire protocol
type Message struct {
	Version   int               `json:",omitempty"`
	Type      string            // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
}

// Matches reports whether an event for collection should reach a subscriber
// of subscribed. The empty string on either side means all collections.
func Matches(subscribed, collection string) bool {
	return subscribed == "" || collection == "" || subscribed == collection
}

// NewEncoder returns the wire encoder used on daemon connections
func NewEncoder(w io.Writer) sonic.Encoder {
	return sonic.ConfigStd.NewEncoder(w)
}

// NewDecoder returns the wire decoder used on daemon connections
func NewDecoder(r io.Reader) sonic.Decoder {
	return sonic.ConfigStd.NewDecoder(r)
}
