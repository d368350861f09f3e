package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type ClientOptions struct {
	PingInterval   time.Duration
	PingTimeout    time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
	// VolatileBuffer bounds the volatile queue; beyond it volatile messages drop.
	VolatileBuffer int
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.PingInterval <= 0 {
		o.PingInterval = 10 * time.Second
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 10 << 20
	}
	if o.VolatileBuffer <= 0 {
		o.VolatileBuffer = 8
	}
	return o
}

// Client is one websocket connection attached to a Hub.
type Client struct {
	Conn        *websocket.Conn
	id          string
	allowedCode string
	volatile    chan []byte
	outbox      *Outbox
	opts        ClientOptions
	logger      *zap.Logger
	channel     Channel

	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex // guards writes on Conn
	isClosed  bool
}

func NewClient(conn *websocket.Conn, id, allowedCode string, opts ClientOptions, logger *zap.Logger) *Client {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		Conn:        conn,
		id:          id,
		allowedCode: allowedCode,
		volatile:    make(chan []byte, opts.VolatileBuffer),
		outbox:      NewOutbox(16),
		opts:        opts,
		logger:      logger.With(zap.String("conn", id)),
		done:        make(chan struct{}),
	}
}

func (cl *Client) ID() string {
	return cl.id
}

func (cl *Client) AllowedCode() string {
	return cl.allowedCode
}

func (cl *Client) Send(msg []byte, class DeliveryClass) bool {
	if class == Volatile {
		select {
		case cl.volatile <- msg:
			return true
		default:
			return false
		}
	}
	return cl.outbox.Push(msg)
}

func (cl *Client) Close() {
	cl.closeOnce.Do(func() {
		close(cl.done)
		cl.outbox.Close()
	})
}

// Start launches the connection pumps. The read pump unregisters the client
// from hub when the connection ends.
func (cl *Client) Start(hub *Hub) {
	cl.channel = hub.Channel()
	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(hub)
}

func (cl *Client) keepAlive() {
	ticker := time.NewTicker(cl.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(cl.opts.WriteWait))
			cl.mu.Unlock()

			if err != nil {
				cl.logger.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

// writeMessage drains the reliable outbox before taking volatile messages,
// so a backlog of frames never delays input events.
func (cl *Client) writeMessage() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.Conn.Close()
		cl.mu.Unlock()
		observeOutboxHighWater(cl.channel, cl.outbox.HighWater())
	}()

	for {
		if msg, ok := cl.outbox.Pop(); ok {
			if !cl.write(msg) {
				return
			}
			continue
		}

		select {
		case <-cl.done:
			cl.flush()
			return
		case <-cl.outbox.Ready():
		case msg := <-cl.volatile:
			if !cl.write(msg) {
				return
			}
		}
	}
}

// flush writes whatever reliable messages are still queued at close.
func (cl *Client) flush() {
	for {
		msg, ok := cl.outbox.Pop()
		if !ok {
			return
		}
		if !cl.write(msg) {
			return
		}
	}
}

func (cl *Client) write(msg []byte) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.isClosed {
		return false
	}
	cl.Conn.SetWriteDeadline(time.Now().Add(cl.opts.WriteWait))
	if err := cl.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		cl.logger.Debug("write failed", zap.Error(err))
		return false
	}
	return true
}

func (cl *Client) readMessage(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			cl.logger.Error("recovered from panic in readMessage", zap.Any("panic", r))
		}

		select {
		case hub.Unregister <- cl:
		case <-hub.Done():
		}
		cl.Close()
		cl.logger.Debug("client disconnected")
	}()

	pongWait := cl.opts.PingInterval + cl.opts.PingTimeout
	cl.Conn.SetReadLimit(cl.opts.MaxMessageSize)
	cl.Conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.Conn.SetPongHandler(func(string) error {
		return cl.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := cl.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				cl.logger.Debug("read failed", zap.Error(err))
			}
			return
		}
		cl.Conn.SetReadDeadline(time.Now().Add(pongWait))

		select {
		case hub.Inbound <- Inbound{ConnID: cl.id, Data: message}:
		case <-hub.Done():
			return
		}
	}
}
