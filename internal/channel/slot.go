package channel

import (
	"sync"
	"time"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// sendSlot admits one outstanding packet per open cycle
type sendSlot struct {
	tokens chan struct{}
}

func newSendSlot() *sendSlot {
	return &sendSlot{tokens: make(chan struct{}, 1)}
}

func (s *sendSlot) tryAcquire() bool {
	select {
	case s.tokens <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *sendSlot) release() {
	select {
	case <-s.tokens:
	default:
	}
}

func (s *sendSlot) held() bool {
	return len(s.tokens) == 1
}

// pendingPacket is a payload waiting for the link layer to take it.
// done closes exactly once; nobody may be listening by then.
type pendingPacket struct {
	payload []byte
	once    sync.Once
	done    chan struct{}
}

func newPendingPacket(payload []byte) *pendingPacket {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	return &pendingPacket{payload: buf, done: make(chan struct{})}
}

func (p *pendingPacket) complete() {
	p.once.Do(func() { close(p.done) })
}

// openCycle is the span between a channel opening and it being detached.
// lost closes when the channel is detached.
type openCycle struct {
	ch       linklayer.Channel
	slot     *sendSlot
	lost     chan struct{}
	openedAt time.Time
}

func newOpenCycle(ch linklayer.Channel) *openCycle {
	return &openCycle{
		ch:       ch,
		slot:     newSendSlot(),
		lost:     make(chan struct{}),
		openedAt: time.Now().UTC(),
	}
}
