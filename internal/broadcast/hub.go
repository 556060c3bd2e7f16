// Package broadcast fans out serialized events to every connected
// WebSocket subscriber. The subscriber registry is owned by a single actor
// goroutine; callers talk to it through a command channel, so no lock is
// shared with request handlers.
package broadcast

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/riteshubale-01/Vortexa-2.0/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
)

// hubCmd is the command interface for the Hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseHubCmd
	connection *websocket.Conn
}

type broadcastCmd struct {
	baseHubCmd
	payload []byte
}

type clientCountCmd struct {
	baseHubCmd
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub maintains the set of connected subscribers and delivers each
// broadcast payload to all of them. Delivery is best effort: a subscriber
// whose buffer is full or whose connection is dead is evicted after the
// fan-out pass and never fails the broadcast.
type Hub struct {
	cmdCh      chan hubCmd
	clock      clockwork.Clock
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
	done       chan struct{}
}

// NewHub creates and starts a hub. maxClients bounds the subscriber set to
// protect the process against connection exhaustion.
func NewHub(clock clockwork.Clock, maxClients int) *Hub {
	h := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		clock:      clock,
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

// Register adds a connection to the subscriber set. The WebSocket
// handshake must already be complete. Returns an error only when the hub
// is full or unresponsive.
func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a connection from the subscriber set. Removing a
// connection that is not registered is a no-op.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- unregisterCmd{connection: conn}
}

// Broadcast queues payload for delivery to every currently registered
// subscriber. It never blocks on slow clients and never returns an error.
func (h *Hub) Broadcast(payload []byte) {
	h.cmdCh <- broadcastCmd{payload: payload}
}

// ClientCount returns the number of registered subscribers, or -1 if the
// hub did not answer within the command timeout.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- clientCountCmd{replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the hub and closes all client connections. Blocks until
// the actor goroutine has exited or the stop timeout is reached.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}

	timer := h.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
		slog.Info("Hub stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Hub stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (h *Hub) run() {
	defer close(h.done)

	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			h.handleRegister(c)
		case unregisterCmd:
			h.handleUnregister(c.connection)
		case broadcastCmd:
			h.handleBroadcast(c.payload)
		case clientCountCmd:
			c.replyChannel <- len(h.clients)
		case stopCmd:
			h.handleStop()
			return
		default:
			slog.Warn("Hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	if len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting client: max clients reached", "max_clients", h.maxClients)
		c.connection.Close()
		c.errorChannel <- fmt.Errorf("max clients (%d) reached", h.maxClients)
		return
	}

	h.clients[c.connection] = newClientWriter(c.connection, h.clock)
	metrics.HubConnectedClients.Set(float64(len(h.clients)))
	slog.Debug("Client registered", "total_clients", len(h.clients))
	c.errorChannel <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, conn)
	metrics.HubConnectedClients.Set(float64(len(h.clients)))
	slog.Debug("Client unregistered", "remaining_clients", len(h.clients))
}

func (h *Hub) handleBroadcast(payload []byte) {
	metrics.HubBroadcastsTotal.Inc()

	// Deliver to a fixed snapshot first; structural removal happens only
	// after the iteration completes.
	var failed []*websocket.Conn
	for conn, writer := range h.clients {
		select {
		case writer.sendChannel <- payload:
		default:
			failed = append(failed, conn)
		}
	}

	for _, conn := range failed {
		slog.Warn("Evicting slow client")
		metrics.HubClientsEvicted.Inc()
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	slog.Info("Hub shutting down", "clients", len(h.clients))
	for conn, cw := range h.clients {
		cw.stopGraceful("Server shutting down")
		delete(h.clients, conn)
	}
	metrics.HubConnectedClients.Set(0)
}
