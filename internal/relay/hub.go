package relay

import (
	"context"
	"time"

	"remote-support-backend/internal/broadcast"
	"remote-support-backend/internal/room"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink is the hub's view of one connection.
type Sink interface {
	ID() string
	// Send hands msg to the connection. Volatile sends report false when the
	// connection is saturated and the message was dropped.
	Send(msg []byte, class DeliveryClass) bool
	Close()
}

// scopedSink is implemented by connections authorised for a single room.
type scopedSink interface {
	AllowedCode() string
}

type Inbound struct {
	ConnID string
	Data   []byte
}

type HubOptions struct {
	Channel   Channel
	Registry  *room.Registry
	Bus       broadcast.Bus
	KeyPrefix string
	Logger    *zap.Logger
}

// Hub serialises all traffic of one channel. Register, Unregister and
// Inbound are consumed by Run, one event at a time.
type Hub struct {
	channel   Channel
	registry  *room.Registry
	conns     map[string]Sink
	bus       broadcast.Bus
	keyPrefix string
	origin    string
	logger    *zap.Logger

	Register   chan Sink
	Unregister chan Sink
	Inbound    chan Inbound
	sweeps     chan sweepRequest
	remote     chan []byte
	outgoing   chan remoteMessage

	ctx  context.Context
	subs map[string]context.CancelFunc
	done chan struct{}
}

func NewHub(opts HubOptions) *Hub {
	if opts.Channel == "" {
		opts.Channel = ChannelControl
	}
	if opts.Registry == nil {
		opts.Registry = room.NewRegistry(room.PolicyExplicitRole, nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Hub{
		channel:    opts.Channel,
		registry:   opts.Registry,
		conns:      make(map[string]Sink),
		bus:        opts.Bus,
		keyPrefix:  opts.KeyPrefix,
		origin:     uuid.NewString(),
		logger:     opts.Logger.With(zap.String("channel", string(opts.Channel))),
		Register:   make(chan Sink),
		Unregister: make(chan Sink),
		Inbound:    make(chan Inbound, 256),
		sweeps:     make(chan sweepRequest),
		remote:     make(chan []byte, 256),
		outgoing:   make(chan remoteMessage, 1024),
		ctx:        context.Background(),
		subs:       make(map[string]context.CancelFunc),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Channel() Channel {
	return h.channel
}

func (h *Hub) Registry() *room.Registry {
	return h.registry
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx
	if h.bus != nil {
		go h.publishLoop(ctx)
	}

	h.logger.Info("relay hub started", zap.String("host_policy", string(h.registry.Policy())))
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-h.Register:
			h.register(s)
		case s := <-h.Unregister:
			h.disconnect(s.ID())
		case in := <-h.Inbound:
			h.handle(in.ConnID, in.Data)
		case req := <-h.sweeps:
			req.reply <- h.sweep(req.threshold)
		case payload := <-h.remote:
			h.deliverRemote(payload)
		}
	}
}

type sweepRequest struct {
	threshold time.Duration
	reply     chan []room.Expired
}

// Sweep is the room.SweepFunc for this hub's sweeper. The registry sweep and
// the room-expired notifications run in one step of the hub loop, so a room
// re-created under the same code is never touched by an older sweep.
func (h *Hub) Sweep(threshold time.Duration) []room.Expired {
	req := sweepRequest{threshold: threshold, reply: make(chan []room.Expired, 1)}
	select {
	case h.sweeps <- req:
	case <-h.done:
		return nil
	}
	select {
	case expired := <-req.reply:
		return expired
	case <-h.done:
		return nil
	}
}

func (h *Hub) shutdown() {
	for code := range h.subs {
		h.unsubscribe(code)
	}
	for id, s := range h.conns {
		s.Close()
		delete(h.conns, id)
		decConnections(h.channel)
	}
	close(h.done)
	h.logger.Info("relay hub stopped")
}

func (h *Hub) register(s Sink) {
	if _, ok := h.conns[s.ID()]; ok {
		return
	}
	h.conns[s.ID()] = s
	incConnections(h.channel)
	h.logger.Debug("connection registered", zap.String("conn", s.ID()))
}

// disconnect runs the leave path for a closed connection. It is safe to call
// more than once and for connections that never joined a room.
func (h *Hub) disconnect(connID string) {
	s, ok := h.conns[connID]
	if !ok {
		return
	}
	delete(h.conns, connID)
	s.Close()
	decConnections(h.channel)

	res, err := h.registry.Leave(connID)
	if err != nil {
		h.logger.Debug("connection closed outside a room", zap.String("conn", connID))
		return
	}
	h.notifyLeave(res)
}

func (h *Hub) handle(connID string, frame []byte) {
	if _, ok := h.conns[connID]; !ok {
		return
	}

	ev, err := Decode(frame)
	if err != nil {
		h.reject(connID, err.Error())
		return
	}

	switch e := ev.(type) {
	case JoinRoom:
		h.join(connID, e)
	case LeaveRoom:
		h.leave(connID)
	default:
		h.dispatch(connID, ev)
	}
}

// dispatch applies the route table to a room-scoped event.
func (h *Hub) dispatch(connID string, ev Event) {
	route, ok := h.channel.Lookup(ev.Kind())
	if !ok {
		h.reject(connID, "Event "+string(ev.Kind())+" is not supported on the "+string(h.channel)+" channel")
		return
	}
	fwd, ok := ev.(routable)
	if !ok {
		h.reject(connID, "Event "+string(ev.Kind())+" cannot be routed")
		return
	}

	code := ev.RoomCode()
	if _, ok := h.registry.Get(code); !ok {
		incMisses(h.channel)
		return
	}
	if m, ok := h.registry.Membership(connID); !ok || m.Code != code {
		h.reject(connID, "Not a member of room "+code)
		return
	}

	switch e := ev.(type) {
	case ScreenSize:
		h.registry.SetScreen(code, room.Dimensions{Width: e.Width, Height: e.Height})
	case QualitySettings:
		h.registry.SetQuality(code, room.Quality{Level: e.Level(), FrameRate: e.Rate()})
	}
	if route.Touch {
		h.registry.Touch(code)
	}

	msg, err := Encode(ev.Kind(), fwd.forward(connID))
	if err != nil {
		h.logger.Error("encode forwarded event", zap.String("kind", string(ev.Kind())), zap.Error(err))
		return
	}

	rm, ok := h.registry.Get(code)
	if !ok {
		incMisses(h.channel)
		return
	}

	ids := targets(rm, route.Target, connID)
	if len(ids) == 0 {
		incMisses(h.channel)
	}
	for _, id := range ids {
		h.deliver(id, msg, route.Class)
	}

	h.publish(remoteMessage{
		Kind:    ev.Kind(),
		Code:    code,
		Sender:  connID,
		Target:  route.Target,
		Class:   route.Class,
		Payload: msg,
	})
}

func (h *Hub) deliver(connID string, msg []byte, class DeliveryClass) bool {
	s, ok := h.conns[connID]
	if !ok {
		return false
	}
	if !s.Send(msg, class) {
		if class == Volatile {
			incDropped(h.channel)
		}
		return false
	}
	addDelivered(h.channel, class, 1)
	return true
}

func (h *Hub) notify(connID string, kind EventKind, data any) {
	msg, err := Encode(kind, data)
	if err != nil {
		h.logger.Error("encode notification", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	h.deliver(connID, msg, Reliable)
}

func (h *Hub) reject(connID, message string) {
	incRejected(h.channel)
	h.logger.Debug("event rejected", zap.String("conn", connID), zap.String("reason", message))
	h.notify(connID, KindError, errorNotice{Message: message})
}

// sweep must run on the hub goroutine.
func (h *Hub) sweep(threshold time.Duration) []room.Expired {
	batch := h.registry.Sweep(threshold)
	if len(batch) > 0 {
		h.expire(batch)
	}
	return batch
}

func (h *Hub) expire(batch []room.Expired) {
	addExpired(h.channel, len(batch))
	for _, e := range batch {
		for _, id := range e.Members {
			h.notify(id, KindRoomExpired, notice{Code: e.Code, Room: e.Code})
		}
		h.unsubscribe(e.Code)
	}
	setRooms(h.channel, h.registry.Len())
}
