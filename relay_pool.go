package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"slidestr/internal/nostr"
	"slidestr/internal/types"
	"slidestr/internal/util"
)

// maxTotalConnections caps concurrent relay connections held by the pool
const maxTotalConnections = 32

// isRelayURLSafe validates that a relay URL is safe to connect to.
// Allows localhost for development but blocks other private IP ranges.
func isRelayURLSafe(relayURL string) bool {
	parsed, err := url.Parse(relayURL)
	if err != nil {
		return false
	}

	// Only allow ws:// and wss:// schemes
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return false
	}

	host := parsed.Hostname()
	if host == "" {
		return false
	}

	// Allow localhost for development
	if util.IsLoopbackHost(host) {
		return true
	}
	if util.IsInternalHost(host) {
		return false
	}

	// Resolve hostname and check IPs
	ips, err := net.LookupIP(host)
	if err != nil {
		// Unresolvable now may still be a valid external host; the dial
		// will fail on its own if not.
		return true
	}

	for _, ip := range ips {
		if !isRelayIPSafe(ip) {
			return false
		}
	}

	return true
}

// isRelayIPSafe checks if an IP is safe for relay connections.
// Allows loopback (localhost) but blocks other private ranges.
func isRelayIPSafe(ip net.IP) bool {
	if ip == nil {
		return false
	}

	if ip.IsLoopback() {
		return true
	}

	// Private networks (10.x, 172.16-31.x, 192.168.x)
	if ip.IsPrivate() {
		return false
	}

	// Link-local (169.254.x.x), including the cloud metadata IP
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return false
	}

	if ip.IsUnspecified() {
		return false
	}

	if ip.IsMulticast() {
		return false
	}

	return true
}

// Subscription represents an active subscription on a relay connection
type Subscription struct {
	ID        string
	EventChan chan types.Event
	EOSEChan  chan bool
	Done      chan struct{}
	closeOnce sync.Once
}

// Close safely closes the Done channel exactly once
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.Done)
	})
}

// RelayConn manages a single websocket connection with multiple subscriptions
type RelayConn struct {
	conn          *websocket.Conn
	relayURL      string
	mu            sync.Mutex
	writeMu       sync.Mutex
	subscriptions map[string]*Subscription
	closed        bool
	lastActivity  time.Time
}

// RelayPool manages connections to multiple relays
type RelayPool struct {
	mu          sync.RWMutex
	connections map[string]*RelayConn // relayURL -> connection
}

// Global relay pool
var relayPool = NewRelayPool()

// NewRelayPool creates a new connection pool
func NewRelayPool() *RelayPool {
	pool := &RelayPool{
		connections: make(map[string]*RelayConn),
	}
	go pool.cleanupLoop()
	return pool
}

// GetConnectionStats returns current connection pool statistics
func (p *RelayPool) GetConnectionStats() (active int, max int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.connections), maxTotalConnections
}

// getOrCreateConn gets an existing connection or creates a new one
func (p *RelayPool) getOrCreateConn(ctx context.Context, relayURL string) (*RelayConn, error) {
	if !isRelayURLSafe(relayURL) {
		return nil, errors.New("relay URL blocked: unsafe destination")
	}

	p.mu.RLock()
	rc := p.connections[relayURL]
	p.mu.RUnlock()

	if rc != nil && !rc.closed {
		return rc, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	rc = p.connections[relayURL]
	if rc != nil && !rc.closed {
		return rc, nil
	}

	if len(p.connections) >= maxTotalConnections {
		return nil, errors.New("relay connection limit reached")
	}

	slog.Debug("pool: creating new connection", "relay", relayURL)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, relayURL, nil)
	if err != nil {
		return nil, err
	}

	rc = &RelayConn{
		conn:          conn,
		relayURL:      relayURL,
		subscriptions: make(map[string]*Subscription),
		lastActivity:  time.Now(),
	}

	p.connections[relayURL] = rc

	go rc.readLoop()

	return rc, nil
}

// Subscribe creates a new subscription on the relay
func (p *RelayPool) Subscribe(ctx context.Context, relayURL string, subID string, filter map[string]interface{}) (*Subscription, error) {
	const maxRetries = 3
	var rc *RelayConn
	var err error
	var connected bool

	for attempt := 0; attempt < maxRetries; attempt++ {
		rc, err = p.getOrCreateConn(ctx, relayURL)
		if err != nil {
			return nil, err
		}

		rc.mu.Lock()
		if rc.closed {
			rc.mu.Unlock()
			// Connection died since we fetched it, drop and retry
			p.mu.Lock()
			delete(p.connections, relayURL)
			p.mu.Unlock()
			continue
		}
		connected = true
		break
	}

	if !connected {
		return nil, errors.New("failed to establish connection after retries")
	}

	sub := &Subscription{
		ID:        subID,
		EventChan: make(chan types.Event, 100),
		EOSEChan:  make(chan bool, 1),
		Done:      make(chan struct{}),
	}

	// Register subscription (rc.mu is already locked from the loop)
	rc.subscriptions[subID] = sub
	rc.mu.Unlock()

	req := []interface{}{"REQ", subID, filter}
	rc.writeMu.Lock()
	err = rc.conn.WriteJSON(req)
	rc.writeMu.Unlock()

	if err != nil {
		rc.mu.Lock()
		delete(rc.subscriptions, subID)
		rc.mu.Unlock()
		rc.markClosed()
		return nil, err
	}

	rc.mu.Lock()
	rc.lastActivity = time.Now()
	rc.mu.Unlock()
	return sub, nil
}

// Unsubscribe closes a subscription. Safe to call on both the success and
// failure path; the Done channel closes exactly once.
func (p *RelayPool) Unsubscribe(relayURL string, sub *Subscription) {
	if sub == nil {
		return
	}

	p.mu.RLock()
	rc := p.connections[relayURL]
	p.mu.RUnlock()

	if rc == nil {
		sub.Close()
		return
	}

	rc.mu.Lock()
	_, exists := rc.subscriptions[sub.ID]
	shouldSendClose := !rc.closed && exists
	if exists {
		delete(rc.subscriptions, sub.ID)
	}
	rc.mu.Unlock()

	// Send CLOSE outside of mutex (best effort, connection may be closed)
	if shouldSendClose {
		closeMsg := []interface{}{"CLOSE", sub.ID}
		rc.writeMu.Lock()
		rc.conn.WriteJSON(closeMsg)
		rc.writeMu.Unlock()
	}

	sub.Close()
}

// readLoop continuously reads from the connection and routes messages
func (rc *RelayConn) readLoop() {
	defer rc.markClosed()

	for {
		var msg types.NostrMessage
		err := rc.conn.ReadJSON(&msg)
		if err != nil {
			rc.mu.Lock()
			closed := rc.closed
			rc.mu.Unlock()
			if !closed {
				slog.Debug("pool: read error", "relay", rc.relayURL, "error", err)
			}
			return
		}

		rc.mu.Lock()
		rc.lastActivity = time.Now()
		rc.mu.Unlock()

		if len(msg) < 2 {
			continue
		}

		msgType, ok := msg[0].(string)
		if !ok {
			continue
		}

		switch msgType {
		case "EVENT":
			if len(msg) < 3 {
				continue
			}
			subID, ok := msg[1].(string)
			if !ok {
				continue
			}

			evt, ok := nostr.ParseEventFromInterface(msg[2])
			if !ok {
				continue
			}
			evt.RelaysSeen = []string{rc.relayURL}
			relayEventsTotal.Add(1)

			rc.mu.Lock()
			sub := rc.subscriptions[subID]
			rc.mu.Unlock()

			if sub != nil {
				select {
				case sub.EventChan <- evt:
				case <-sub.Done:
				default:
					// Channel full, drop event
					droppedEventCount.Add(1)
				}
			}

		case "EOSE":
			subID, ok := msg[1].(string)
			if !ok {
				continue
			}

			rc.mu.Lock()
			sub := rc.subscriptions[subID]
			rc.mu.Unlock()

			if sub != nil {
				select {
				case sub.EOSEChan <- true:
				default:
				}
			}

		case "CLOSED":
			// Subscription was closed by relay
			subID, _ := msg[1].(string)
			rc.mu.Lock()
			sub := rc.subscriptions[subID]
			if sub != nil {
				delete(rc.subscriptions, subID)
			}
			rc.mu.Unlock()
			if sub != nil {
				sub.Close()
			}

		case "NOTICE":
			notice, _ := msg[1].(string)
			slog.Debug("pool: NOTICE", "relay", rc.relayURL, "notice", notice)
		}
	}
}

// markClosed marks the connection as closed and cleans up
func (rc *RelayConn) markClosed() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.closed {
		return
	}

	rc.closed = true
	rc.conn.Close()

	// Close all subscription channels
	for _, sub := range rc.subscriptions {
		sub.Close()
	}
	rc.subscriptions = make(map[string]*Subscription)
}

// cleanupLoop periodically removes stale connections
func (p *RelayPool) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	for range ticker.C {
		p.cleanup()
	}
}

// cleanup removes connections that have been idle too long
func (p *RelayPool) cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for url, rc := range p.connections {
		rc.mu.Lock()
		idle := len(rc.subscriptions) == 0 && now.Sub(rc.lastActivity) > 2*time.Minute
		rc.mu.Unlock()

		if rc.closed || idle {
			if !rc.closed {
				slog.Debug("pool: closing idle connection", "relay", url)
				rc.markClosed()
			}
			delete(p.connections, url)
		}
	}
}
