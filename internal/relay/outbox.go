package relay

import "sync"

// Outbox is the unbounded per-connection queue behind reliable delivery.
// It is a ring buffer that doubles its capacity once 70% full, so Push never
// blocks and never drops while the outbox is open.
type Outbox struct {
	mu       sync.Mutex
	buf      [][]byte
	head     int
	tail     int
	count    int
	capacity int
	closed   bool
	ready    chan struct{}

	highWater int
}

func NewOutbox(initialCapacity int) *Outbox {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &Outbox{
		buf:      make([][]byte, initialCapacity),
		capacity: initialCapacity,
		ready:    make(chan struct{}, 1),
	}
}

// Push appends msg. It returns false only after Close.
func (o *Outbox) Push(msg []byte) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false
	}

	threshold := (o.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if o.count+1 >= threshold {
		o.grow()
	}

	o.buf[o.tail] = msg
	o.tail = (o.tail + 1) % o.capacity
	o.count++
	if o.count > o.highWater {
		o.highWater = o.count
	}

	select {
	case o.ready <- struct{}{}:
	default:
	}
	return true
}

// Pop removes the oldest message without blocking.
func (o *Outbox) Pop() ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.count == 0 {
		return nil, false
	}

	msg := o.buf[o.head]
	o.buf[o.head] = nil
	o.head = (o.head + 1) % o.capacity
	o.count--
	return msg, true
}

// Ready is signalled after every Push. A receive does not guarantee the
// message is still queued, callers loop on Pop.
func (o *Outbox) Ready() <-chan struct{} {
	return o.ready
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}

func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

// HighWater is the largest backlog the outbox has held.
func (o *Outbox) HighWater() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.highWater
}

func (o *Outbox) grow() {
	newCapacity := o.capacity * 2
	newBuf := make([][]byte, newCapacity)

	for i := 0; i < o.count; i++ {
		newBuf[i] = o.buf[(o.head+i)%o.capacity]
	}

	o.buf = newBuf
	o.head = 0
	o.tail = o.count
	o.capacity = newCapacity
}
