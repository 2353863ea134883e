// Package stream implements transport.Transport over the radio's framed protobuf
// stream API, as exposed on its USB serial port and on TCP port 4403.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rmacdonaldsmith/meshchat-go/internal/transport/fanout"
	"github.com/rmacdonaldsmith/meshchat-go/internal/transport/meshwire"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

var (
	errConfigTimeout = errors.New("timed out waiting for node database")
	errWriteTimeout  = errors.New("write to radio timed out")
)

// Client is an open stream link to a radio.
//
// Inbound packets are delivered sequentially from the client's read goroutine.
type Client struct {
	cfg Config
	rwc io.ReadWriteCloser
	hub *fanout.Hub
	log zerolog.Logger

	wmu sync.Mutex // serialises frame writes

	mu     sync.RWMutex
	nodes  []transport.NodeRecord
	myNode transport.NodeID

	nonce      uint32
	configDone chan struct{}
	configOnce sync.Once

	reading  atomic.Bool
	readDone chan struct{}
	readErr  error

	linkOnce sync.Once
	linkErr  error

	stopHeartbeat context.CancelFunc
	closeOnce     sync.Once
	closeErr      error
	closed        atomic.Bool
}

// Open performs the client handshake over rwc: it wakes the radio, requests its
// configuration and waits for the node database. On failure rwc is closed and a
// *transport.TransportError is returned.
func Open(ctx context.Context, rwc io.ReadWriteCloser, cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		rwc.Close()
		return nil, &transport.TransportError{Endpoint: cfg.Endpoint, Err: err}
	}

	c := &Client{
		cfg:           cfg,
		rwc:           rwc,
		hub:           fanout.NewHub(),
		log:           log.With().Str("component", "stream").Str("endpoint", cfg.Endpoint).Logger(),
		nonce:         nonZeroUint32(),
		configDone:    make(chan struct{}),
		readDone:      make(chan struct{}),
		stopHeartbeat: func() {},
	}

	if err := c.handshake(ctx); err != nil {
		c.Close()
		return nil, &transport.TransportError{Endpoint: cfg.Endpoint, Err: err}
	}

	if cfg.HeartbeatInterval > 0 {
		hbCtx, cancel := context.WithCancel(context.Background())
		c.stopHeartbeat = cancel
		go c.heartbeat(hbCtx)
	}

	c.log.Debug().Int("nodes", len(c.nodes)).Stringer("my_node", c.MyNode()).Msg("radio configured")
	return c, nil
}

func (c *Client) handshake(ctx context.Context) error {
	if err := c.write(meshwire.WakeSequence); err != nil {
		return fmt.Errorf("wake radio: %w", err)
	}

	select {
	case <-time.After(c.cfg.WakeDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	c.reading.Store(true)
	go c.readLoop()

	if err := c.send(&meshwire.ToRadio{WantConfigID: c.nonce}); err != nil {
		return fmt.Errorf("request config: %w", err)
	}

	timer := time.NewTimer(c.cfg.ConfigTimeout)
	defer timer.Stop()

	select {
	case <-c.configDone:
		return nil
	case <-c.readDone:
		if c.readErr != nil {
			return fmt.Errorf("link closed during config: %w", c.readErr)
		}
		return errors.New("link closed during config")
	case <-timer.C:
		return errConfigTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) readLoop() {
	defer close(c.readDone)

	fr := meshwire.NewFrameReader(c.rwc)
	fr.OnConsole = func(line string) {
		c.log.Trace().Str("console", line).Msg("radio console")
	}

	for {
		payload, err := fr.Next()
		if err != nil {
			if !c.closed.Load() {
				c.readErr = err
				c.log.Warn().Err(err).Msg("radio link lost")
			}
			return
		}

		msg, err := meshwire.UnmarshalFromRadio(payload)
		if err != nil {
			c.log.Debug().Err(err).Msg("skipping undecodable frame")
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg *meshwire.FromRadio) {
	switch {
	case msg.Packet != nil:
		c.hub.Publish(msg.Packet.Packet())

	case msg.NodeInfo != nil:
		select {
		case <-c.configDone:
			// The directory is a startup snapshot; later updates are not applied
			c.log.Debug().Uint32("num", msg.NodeInfo.Num).Msg("ignoring node update after config")
		default:
			c.mu.Lock()
			c.nodes = append(c.nodes, msg.NodeInfo.Record())
			c.mu.Unlock()
		}

	case msg.MyInfo != nil:
		c.mu.Lock()
		c.myNode = transport.NodeID(msg.MyInfo.MyNodeNum)
		c.mu.Unlock()

	case msg.HasConfigComplete:
		if msg.ConfigCompleteID != c.nonce {
			c.log.Debug().Uint32("id", msg.ConfigCompleteID).Msg("config complete for another client")
			return
		}
		c.configOnce.Do(func() { close(c.configDone) })

	case msg.Rebooted:
		c.log.Warn().Msg("radio rebooted")
	}
}

func (c *Client) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.send(&meshwire.ToRadio{Heartbeat: true}); err != nil {
				c.log.Debug().Err(err).Msg("heartbeat failed")
			}
		}
	}
}

// Nodes returns the node database received during the handshake.
func (c *Client) Nodes(ctx context.Context) ([]transport.NodeRecord, error) {
	if c.closed.Load() {
		return nil, transport.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]transport.NodeRecord(nil), c.nodes...), nil
}

// MyNode returns the number of the radio this client is attached to.
func (c *Client) MyNode() transport.NodeID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.myNode
}

// Subscribe registers handler for inbound packets.
func (c *Client) Subscribe(handler transport.Handler) (transport.Subscription, error) {
	if c.closed.Load() {
		return nil, transport.ErrClosed
	}
	return c.hub.Subscribe(handler)
}

// BroadcastText sends text to every node on the configured channel.
func (c *Client) BroadcastText(ctx context.Context, text string) error {
	if c.closed.Load() {
		return &transport.SendError{Err: transport.ErrClosed}
	}
	if len(text) > transport.MaxTextPayload {
		return &transport.SendError{Err: fmt.Errorf("%w: %d bytes, limit %d",
			transport.ErrPayloadTooLarge, len(text), transport.MaxTextPayload)}
	}
	if err := ctx.Err(); err != nil {
		return &transport.SendError{Err: err}
	}

	msg := &meshwire.ToRadio{Packet: &meshwire.MeshPacket{
		To:       uint32(transport.BroadcastID),
		Channel:  c.cfg.Channel,
		ID:       nonZeroUint32(),
		HopLimit: c.cfg.HopLimit,
		WantAck:  c.cfg.WantAck,
		Decoded: &meshwire.Data{
			PortNum: transport.PortTextMessage,
			Payload: []byte(text),
		},
	}}
	if err := c.send(msg); err != nil {
		return &transport.SendError{Err: err}
	}
	return nil
}

func (c *Client) send(msg *meshwire.ToRadio) error {
	frame, err := meshwire.AppendFrame(nil, msg.Marshal())
	if err != nil {
		return err
	}
	return c.write(frame)
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

func (c *Client) write(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if d, ok := c.rwc.(writeDeadliner); ok {
		_ = d.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
		defer d.SetWriteDeadline(time.Time{})
		_, err := c.rwc.Write(b)
		return err
	}

	// Serial ports have no write deadline. A write still pending after
	// WriteTimeout means the radio has stopped draining its input, so the link
	// is closed to release the writer and the read loop.
	done := make(chan error, 1)
	go func() {
		_, err := c.rwc.Write(b)
		done <- err
	}()

	timer := time.NewTimer(c.cfg.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		c.log.Warn().Dur("timeout", c.cfg.WriteTimeout).Msg("radio write stalled, closing link")
		c.closeLink()
		return errWriteTimeout
	}
}

func (c *Client) closeLink() error {
	c.linkOnce.Do(func() { c.linkErr = c.rwc.Close() })
	return c.linkErr
}

// Close tells the radio the client is leaving, closes the link and waits for the
// read goroutine to exit. Safe to call multiple times.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.stopHeartbeat()

		if err := c.send(&meshwire.ToRadio{Disconnect: true}); err != nil {
			c.log.Debug().Err(err).Msg("disconnect notice not sent")
		}
		c.hub.Close()
		c.closeErr = c.closeLink()
		if !c.reading.Load() {
			return
		}

		select {
		case <-c.readDone:
		case <-time.After(2 * time.Second):
			c.log.Warn().Msg("read loop did not exit after close")
		}
	})
	return c.closeErr
}

func nonZeroUint32() uint32 {
	for {
		if v := rand.Uint32(); v != 0 {
			return v
		}
	}
}

// Verify that Client implements the Transport interface at compile time
var _ transport.Transport = (*Client)(nil)
