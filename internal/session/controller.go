// Package session owns the lifecycle of one connection to an S-Charge
// station: UDP broadcast discovery, the WebSocket the station dials back
// into, keepalive handshakes, and ack correlation for outbound commands.
package session

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matemat13/ha-s-charge/internal/wire"
)

const (
	handshakePeriod     = 7 * time.Second
	confirmationTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Controller is the single owner of the live connection to one station.
// Every field that changes after construction is touched only from the
// goroutines Run starts, or guarded by mu for the write path external
// callers (the command API) use.
type Controller struct {
	serial  string
	localIP string
	log     *log.Logger

	// OnMessage is invoked from the read-pump goroutine for every decoded,
	// schema-valid inbound telemetry message. It must not block.
	OnMessage func(*wire.Message)

	mu sync.Mutex
	ws *websocket.Conn

	pending *correlator

	portReady   chan int
	connected   chan struct{}
	connectOnce sync.Once
}

// NewController builds a controller for one station. logger is used as-is;
// the session's lines carry their own ERROR:/WARNING:/SUCCESS: markers.
func NewController(serial, localIP string, logger *log.Logger) *Controller {
	return &Controller{
		serial:    serial,
		localIP:   localIP,
		log:       logger,
		pending:   newCorrelator(),
		portReady: make(chan int, 1),
		connected: make(chan struct{}),
	}
}

// PortReady delivers the actual TCP port the WebSocket listener bound to,
// exactly once, as soon as Run starts listening. Useful when the caller
// asked for an ephemeral port ("auto" in the CLI).
func (c *Controller) PortReady() <-chan int { return c.portReady }

// Run starts the listener, the UDP discovery loop, and — once the station
// connects — the keepalive handshake loop, blocking until ctx is canceled
// or the connection is lost (noticed when the next keepalive handshake
// cannot be sent). A lost connection is fatal to the session: per
// this bridge's design there is no internal reconnect, the caller (main) is
// expected to exit and let an external supervisor restart the process.
func (c *Controller) Run(ctx context.Context, recvPort int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", recvPort))
	if err != nil {
		return fmt.Errorf("session: listen: %w", err)
	}
	actualPort := ln.Addr().(*net.TCPAddr).Port
	c.portReady <- actualPort

	mux := http.NewServeMux()
	mux.HandleFunc("/", c.handleUpgrade)
	srv := &http.Server{Handler: mux}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	defer srv.Close()

	stopUDP := make(chan struct{})
	go func() {
		select {
		case <-c.connected:
			close(stopUDP)
		case <-ctx.Done():
		}
	}()
	go c.udpHandshakeLoop(ctx, stopUDP, actualPort)

	select {
	case <-c.connected:
	case <-ctx.Done():
		return ctx.Err()
	case err := <-serveErr:
		return fmt.Errorf("session: http server stopped before charger connected: %w", err)
	}

	hsDone := make(chan struct{})
	go func() { c.handshakeLoop(ctx); close(hsDone) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-hsDone:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("session: charger connection lost")
	case err := <-serveErr:
		return fmt.Errorf("session: http server stopped: %w", err)
	}
}

// SendAuthorize sends an Authorize action and waits up to the confirmation
// timeout for its matching ack, returning the ack's result flag.
func (c *Controller) SendAuthorize(ctx context.Context, purpose string, current, connectorID int) (bool, error) {
	msg := wire.Authorize{
		CurrentTimeUnix: time.Now(),
		UserID:          1,
		ChargeBoxSN:     c.serial,
		Purpose:         purpose,
		Current:         current,
		ConnectorID:     connectorID,
	}
	uniqueID := msg.UniqueID()
	resultCh := c.pending.Register(uniqueID)

	raw, err := msg.Encode()
	if err != nil {
		c.pending.Cancel(uniqueID)
		return false, fmt.Errorf("session: encode authorize: %w", err)
	}
	if err := c.send(raw); err != nil {
		c.pending.Cancel(uniqueID)
		return false, fmt.Errorf("session: send authorize: %w", err)
	}

	timer := time.NewTimer(confirmationTimeout)
	defer timer.Stop()
	select {
	case res := <-resultCh:
		return res.Result, nil
	case <-timer.C:
		c.pending.Cancel(uniqueID)
		return false, fmt.Errorf("session: authorize %s timed out waiting for ack", uniqueID)
	case <-ctx.Done():
		c.pending.Cancel(uniqueID)
		return false, ctx.Err()
	}
}
