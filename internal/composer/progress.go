package composer

import (
	"sync"

	"github.com/edudashpro/attachd/internal/upload"
)

// Event is one progress update for an in-flight upload.
type Event struct {
	UploadID string          `json:"uploadId"`
	Progress upload.Progress `json:"progress"`
	Done     bool            `json:"done"`
	Error    string          `json:"error,omitempty"`
}

// ProgressBroker fans out upload progress events to subscribers keyed by
// upload ID. Subscribers that fall behind miss events rather than blocking
// the upload; progress is advisory UI state, not a durable stream.
type ProgressBroker struct {
	mu   sync.Mutex
	subs map[string][]chan Event
}

// NewProgressBroker creates an empty broker.
func NewProgressBroker() *ProgressBroker {
	return &ProgressBroker{subs: make(map[string][]chan Event)}
}

// Subscribe registers for events about uploadID. The returned cancel func
// must be called to release the subscription; the channel is closed either
// by cancel or by a terminal event.
func (b *ProgressBroker) Subscribe(uploadID string) (<-chan Event, func()) {
	ch := make(chan Event, 8)

	b.mu.Lock()
	b.subs[uploadID] = append(b.subs[uploadID], ch)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			chans := b.subs[uploadID]
			for i, c := range chans {
				if c == ch {
					b.subs[uploadID] = append(chans[:i], chans[i+1:]...)
					close(ch)
					break
				}
			}
			if len(b.subs[uploadID]) == 0 {
				delete(b.subs, uploadID)
			}
		})
	}
	return ch, cancel
}

// Publish delivers an event to all subscribers of its upload ID. A terminal
// event (Done or Error set) also closes and removes the subscriptions.
// Sends happen under the lock so a concurrent cancel cannot close a channel
// Publish is still sending on; the sends are non-blocking, so holding the
// lock is bounded.
func (b *ProgressBroker) Publish(ev Event) {
	terminal := ev.Done || ev.Error != ""

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[ev.UploadID] {
		select {
		case ch <- ev:
		default:
		}
		if terminal {
			close(ch)
		}
	}
	if terminal {
		delete(b.subs, ev.UploadID)
	}
}
