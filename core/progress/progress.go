package progress

import "sync"

// Phase identifies which long-running operation a message belongs to.
type Phase string

const (
	PhaseImport    Phase = "import"
	PhaseReconcile Phase = "reconcile"
)

// State is the lifecycle position of the operation.
type State string

const (
	StateStart    State = "start"
	StateProgress State = "progress"
	StateDone     State = "done"
	StateFail     State = "fail"
)

// Message is one progress update crossing the host boundary.
type Message struct {
	Phase Phase `json:"phase"`
	State State `json:"state"`
	// Percent is the completion estimate, 0-100. Negative when unknown
	// (streaming input has no known total).
	Percent float64 `json:"percent,omitempty"`
	// Records is the count of records processed so far.
	Records int64 `json:"recordsProcessed,omitempty"`
	// Error carries the failure description for StateFail.
	Error string `json:"error,omitempty"`
}

// Reporter receives progress updates from a running operation.
type Reporter interface {
	Report(msg Message)
}

// Discard is a Reporter that drops every message.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(Message) {}

// Broadcaster fans messages out to subscribers and remembers the latest
// message per phase so late observers (e.g. a polling status endpoint) can
// catch up.
type Broadcaster struct {
	mu     sync.RWMutex
	latest map[Phase]Message
	subs   []chan Message
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{latest: make(map[Phase]Message)}
}

// Report implements Reporter. Slow subscribers never block the sender;
// a full subscriber channel drops the update (the latest snapshot is still
// available through Latest). Sends happen under the lock so a concurrent
// cancel can never close a channel between snapshot and send; they are
// non-blocking, so holding the lock is cheap.
func (b *Broadcaster) Report(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest[msg.Phase] = msg
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribe returns a buffered channel of future messages and a cancel
// function that closes it.
func (b *Broadcaster) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, 64)

	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	// Removal and close share the broadcaster lock with Report, so no send
	// can land on the channel once it is closed.
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub == ch {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Latest returns the most recent message for a phase, if any.
func (b *Broadcaster) Latest(phase Phase) (Message, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	msg, ok := b.latest[phase]
	return msg, ok
}
