package linklayer

import (
	"sync"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// channel is one side of an in-process dynamic channel
type channel struct {
	key    linklayer.ServiceKey
	remote linklayer.Address
	mtu    int
	peer   *channel
	queue  *queueEnd

	mu            sync.Mutex
	closed        bool
	closeHandler  linklayer.Handler
	closeCallback func(linklayer.DisconnectReason)
	closeReason   linklayer.DisconnectReason
}

// newChannelPair returns the initiator's side and the acceptor's side
func newChannelPair(key linklayer.ServiceKey, initiator, acceptor linklayer.Address, mtu, depth int) (*channel, *channel) {
	a := &channel{key: key, remote: acceptor, mtu: mtu}
	b := &channel{key: key, remote: initiator, mtu: mtu}
	a.peer, b.peer = b, a
	a.queue = &queueEnd{owner: a, depth: depth}
	b.queue = &queueEnd{owner: b, depth: depth}
	return a, b
}

func (c *channel) QueueEnd() linklayer.QueueEnd {
	return c.queue
}

func (c *channel) RemoteAddress() linklayer.Address {
	return c.remote
}

func (c *channel) ServiceKey() linklayer.ServiceKey {
	return c.key
}

func (c *channel) MTU() int {
	return c.mtu
}

func (c *channel) peerQueue() *queueEnd {
	return c.peer.queue
}

// RegisterOnClose installs the close notification. If the channel already
// closed, the notification is posted right away.
func (c *channel) RegisterOnClose(h linklayer.Handler, cb func(linklayer.DisconnectReason)) {
	c.mu.Lock()
	if c.closed {
		reason := c.closeReason
		c.mu.Unlock()
		h.Post(func() { cb(reason) })
		return
	}
	c.closeHandler = h
	c.closeCallback = cb
	c.mu.Unlock()
}

// Close closes both sides. The local side is told the host terminated the
// channel, the peer that the remote user did.
func (c *channel) Close() {
	c.shutdown(linklayer.LocalHostTerminated)
	c.peer.shutdown(linklayer.RemoteUserTerminated)
}

func (c *channel) shutdown(reason linklayer.DisconnectReason) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.closeReason = reason
	h, cb := c.closeHandler, c.closeCallback
	c.closeHandler, c.closeCallback = nil, nil
	c.mu.Unlock()

	c.queue.close()
	if cb != nil {
		h.Post(func() { cb(reason) })
	}
}

// queueEnd buffers inbound packets for its owner and pumps the owner's
// enqueue callback into the peer's buffer.
type queueEnd struct {
	owner *channel
	depth int

	mu             sync.Mutex
	closed         bool
	inbound        [][]byte
	senderBlocked  bool
	enqueueHandler linklayer.Handler
	enqueueCb      linklayer.EnqueueCallback
	enqueueGen     uint64
	dequeueHandler linklayer.Handler
	dequeueCb      linklayer.DequeueCallback
	drainScheduled bool
}

func (q *queueEnd) RegisterEnqueue(h linklayer.Handler, cb linklayer.EnqueueCallback) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return linklayer.ErrChannelClosed
	}
	if q.enqueueCb != nil {
		q.mu.Unlock()
		return linklayer.ErrEnqueueRegistered
	}
	q.enqueueHandler = h
	q.enqueueCb = cb
	q.enqueueGen++
	gen := q.enqueueGen
	q.mu.Unlock()

	h.Post(func() { q.pump(gen) })
	return nil
}

func (q *queueEnd) UnregisterEnqueue() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueueHandler = nil
	q.enqueueCb = nil
}

func (q *queueEnd) RegisterDequeue(h linklayer.Handler, cb linklayer.DequeueCallback) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return linklayer.ErrChannelClosed
	}
	if q.dequeueCb != nil {
		q.mu.Unlock()
		return linklayer.ErrDequeueRegistered
	}
	q.dequeueHandler = h
	q.dequeueCb = cb
	schedule := len(q.inbound) > 0 && !q.drainScheduled
	if schedule {
		q.drainScheduled = true
	}
	q.mu.Unlock()

	if schedule {
		h.Post(q.drain)
	}
	return nil
}

func (q *queueEnd) UnregisterDequeue() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dequeueHandler = nil
	q.dequeueCb = nil
}

func (q *queueEnd) TryDequeue() ([]byte, bool) {
	q.mu.Lock()
	if q.closed || len(q.inbound) == 0 {
		q.mu.Unlock()
		return nil, false
	}
	pkt := q.inbound[0]
	q.inbound[0] = nil
	q.inbound = q.inbound[1:]
	wake := q.senderBlocked
	q.senderBlocked = false
	q.mu.Unlock()

	if wake {
		q.owner.peerQueue().resume()
	}
	return pkt, true
}

// Pending returns the number of buffered inbound packets
func (q *queueEnd) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inbound)
}

// pump runs on the enqueue handler. It keeps calling the enqueue callback
// while one is registered and the peer has room.
func (q *queueEnd) pump(gen uint64) {
	for {
		q.mu.Lock()
		if q.closed || q.enqueueCb == nil || q.enqueueGen != gen {
			q.mu.Unlock()
			return
		}
		cb := q.enqueueCb
		q.mu.Unlock()

		peer := q.owner.peerQueue()
		if !peer.reserve() {
			return
		}
		pkt := cb()
		if pkt == nil {
			return
		}
		peer.deliver(pkt)
	}
}

// resume restarts a pump stalled on a full peer buffer
func (q *queueEnd) resume() {
	q.mu.Lock()
	if q.closed || q.enqueueCb == nil {
		q.mu.Unlock()
		return
	}
	h, gen := q.enqueueHandler, q.enqueueGen
	q.mu.Unlock()
	h.Post(func() { q.pump(gen) })
}

// reserve reports whether one more packet fits; when it does not, the
// sender is marked blocked and resumed by the next TryDequeue.
func (q *queueEnd) reserve() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	if len(q.inbound) < q.depth {
		return true
	}
	q.senderBlocked = true
	return false
}

func (q *queueEnd) deliver(pkt []byte) {
	buf := make([]byte, len(pkt))
	copy(buf, pkt)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.inbound = append(q.inbound, buf)
	var h linklayer.Handler
	if q.dequeueCb != nil && !q.drainScheduled {
		q.drainScheduled = true
		h = q.dequeueHandler
	}
	q.mu.Unlock()

	if h != nil {
		h.Post(q.drain)
	}
}

// drain hands one data-ready notification to the dequeue callback and
// reposts itself while the callback keeps consuming.
func (q *queueEnd) drain() {
	q.mu.Lock()
	if q.closed || q.dequeueCb == nil || len(q.inbound) == 0 {
		q.drainScheduled = false
		q.mu.Unlock()
		return
	}
	cb := q.dequeueCb
	before := len(q.inbound)
	q.mu.Unlock()

	cb()

	q.mu.Lock()
	if !q.closed && q.dequeueCb != nil && len(q.inbound) > 0 && len(q.inbound) < before {
		h := q.dequeueHandler
		q.mu.Unlock()
		h.Post(q.drain)
		return
	}
	q.drainScheduled = false
	q.mu.Unlock()
}

func (q *queueEnd) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.inbound = nil
	q.senderBlocked = false
	q.enqueueHandler, q.enqueueCb = nil, nil
	q.dequeueHandler, q.dequeueCb = nil, nil
}

var (
	_ linklayer.Channel  = (*channel)(nil)
	_ linklayer.QueueEnd = (*queueEnd)(nil)
)
