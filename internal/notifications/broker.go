// Package notifications fans appointment events out to in-process listeners.
package notifications

import (
	"context"
	"sync"
	"time"

	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

const (
	DefaultBufferSize  = 32
	DefaultHistorySize = 256
)

// Notification is one appointment event as seen by listeners. Seq increases
// by one per published notification.
type Notification struct {
	Seq        uint64                 `json:"seq"`
	EventType  string                 `json:"event_type"`
	Event      model.AppointmentEvent `json:"event"`
	ReceivedAt time.Time              `json:"received_at"`
}

// Filter narrows a subscription. Empty fields match everything.
type Filter struct {
	BranchID  string
	StylistID string
	ClientID  string
}

func (f Filter) Matches(n Notification) bool {
	if f.BranchID != "" && n.Event.BranchID != f.BranchID {
		return false
	}
	if f.ClientID != "" && n.Event.ClientID != f.ClientID {
		return false
	}
	if f.StylistID != "" {
		for _, id := range n.Event.StylistIDs {
			if id == f.StylistID {
				return true
			}
		}
		return false
	}
	return true
}

// Subscription receives matching notifications on C until it is unsubscribed.
type Subscription struct {
	C      <-chan Notification
	ch     chan Notification
	id     uint64
	filter Filter
}

type Broker struct {
	mu      sync.RWMutex
	subs    map[uint64]*Subscription
	nextID  uint64
	seq     uint64
	history []Notification
	histCap int
	bufSize int
	closed  bool
	log     *logger.Logger
}

func NewBroker(bufferSize, historySize int, log *logger.Logger) *Broker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Broker{
		subs:    make(map[uint64]*Subscription),
		histCap: historySize,
		bufSize: bufferSize,
		log:     log,
	}
}

// Subscribe registers a listener. On a closed broker the returned channel is
// already closed.
func (b *Broker) Subscribe(filter Filter) *Subscription {
	ch := make(chan Notification, b.bufSize)
	sub := &Subscription{C: ch, ch: ch, filter: filter}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return sub
	}
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is a no-op.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
}

// Publish stamps n with the next sequence number and delivers it to every
// matching subscriber. A subscriber whose buffer is full misses n; it can
// catch up through Since.
func (b *Broker) Publish(n Notification) Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return n
	}

	b.seq++
	n.Seq = b.seq
	if n.ReceivedAt.IsZero() {
		n.ReceivedAt = time.Now().UTC()
	}

	b.history = append(b.history, n)
	if len(b.history) > b.histCap {
		b.history = b.history[len(b.history)-b.histCap:]
	}

	for _, sub := range b.subs {
		if !sub.filter.Matches(n) {
			continue
		}
		select {
		case sub.ch <- n:
		default:
			b.log.Warn("Dropping notification for slow subscriber",
				"subscriber", sub.id,
				"seq", n.Seq,
				"appointment_id", n.Event.AppointmentID,
			)
		}
	}
	return n
}

// Since returns retained notifications after seq that match filter, oldest first.
func (b *Broker) Since(seq uint64, filter Filter) []Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []Notification{}
	for _, n := range b.history {
		if n.Seq > seq && filter.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

func (b *Broker) LastSeq() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.seq
}

// Close unsubscribes everyone. Later publishes are ignored.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// HandleMessage is the kafka.MessageHandler that feeds the broker from the
// appointments topic.
func (b *Broker) HandleMessage(_ context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()
	switch eventType {
	case config.EventAppointmentCreated, config.EventAppointmentStatusChanged:
	default:
		b.log.Debug("Ignoring unknown event type", "event_type", eventType, "key", msg.Key)
		return nil
	}

	var event model.AppointmentEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode appointment event", err)
	}
	if event.AppointmentID == "" {
		return kafka.NewPermanentError("appointment event without appointment id", kafka.ErrInvalidMessage)
	}

	n := b.Publish(Notification{EventType: eventType, Event: event})
	b.log.Info("Appointment notification published",
		"seq", n.Seq,
		"event_type", eventType,
		"appointment_id", event.AppointmentID,
		"status", event.Status,
	)
	return nil
}
