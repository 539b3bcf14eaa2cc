package websockets

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message types
const (
	MsgTypeSubscribe      = "subscribe"
	MsgTypeUnsubscribe    = "unsubscribe"
	MsgTypeReportCreated  = "report_created"
	MsgTypeCommentCreated = "comment_created"
)

// Client is one connected websocket subscriber. A client without a position
// receives every event.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu        sync.RWMutex
	latitude  float64
	longitude float64
	radiusKM  float64
	located   bool
}

func (c *Client) setArea(lat, lon, radiusKM float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latitude, c.longitude, c.radiusKM, c.located = lat, lon, radiusKM, true
}

func (c *Client) clearArea() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.located = false
}

// apply updates the client's area from a control message. Subscribing
// without a radius follows every event.
func (c *Client) apply(msg Message) {
	switch msg.Type {
	case MsgTypeSubscribe:
		if msg.RadiusKM <= 0 {
			c.clearArea()
			return
		}
		c.setArea(msg.Latitude, msg.Longitude, msg.RadiusKM)
	case MsgTypeUnsubscribe:
		c.clearArea()
	}
}

// wants reports whether an event at (lat, lon) should reach this client.
func (c *Client) wants(e Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.located || e.Latitude == nil || e.Longitude == nil {
		return true
	}
	return HaversineKM(c.latitude, c.longitude, *e.Latitude, *e.Longitude) <= c.radiusKM
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *zap.Logger
}

// Event is pushed to subscribers as {"type": ..., "data": ...}.
type Event struct {
	Type      string   `json:"type"`
	Data      any      `json:"data"`
	Latitude  *float64 `json:"-"`
	Longitude *float64 `json:"-"`
}

// Message is what clients send to the hub.
type Message struct {
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	RadiusKM  float64 `json:"radius_km,omitempty"`
}
