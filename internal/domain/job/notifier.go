package job

import "sync"

// Notifier fans out change signals for a job kind to any number of subscribers.
type Notifier interface {
	Subscribe(kind Kind) (func(), <-chan struct{})
	Broadcast(kind Kind)
	StopAll()
}

// ChangeNotifier is the default Notifier. Each subscriber gets a channel with a buffer of one;
// signals sent while a subscriber still has one pending are coalesced.
type ChangeNotifier struct {
	mu      sync.Mutex
	subs    map[Kind]map[chan struct{}]struct{}
	stopped bool
}

// NewChangeNotifier constructs an empty ChangeNotifier.
func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{subs: make(map[Kind]map[chan struct{}]struct{})}
}

// Subscribe registers a listener for kind. The returned func unsubscribes and closes the channel;
// it is safe to call more than once.
func (n *ChangeNotifier) Subscribe(kind Kind) (func(), <-chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan struct{}, 1)
	if n.stopped {
		close(ch)
		return func() {}, ch
	}
	if n.subs[kind] == nil {
		n.subs[kind] = make(map[chan struct{}]struct{})
	}
	n.subs[kind][ch] = struct{}{}

	unsub := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		subscribers := n.subs[kind]
		if _, ok := subscribers[ch]; !ok {
			return
		}
		delete(subscribers, ch)
		drainAndClose(ch)
		if len(subscribers) == 0 {
			delete(n.subs, kind)
		}
	}
	return unsub, ch
}

// Broadcast signals every subscriber of kind without blocking.
func (n *ChangeNotifier) Broadcast(kind Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.subs[kind] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of listeners currently registered for kind.
func (n *ChangeNotifier) Subscribers(kind Kind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[kind])
}

// StopAll closes every subscriber channel. Later subscriptions receive a closed channel.
func (n *ChangeNotifier) StopAll() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopped = true
	for kind, subscribers := range n.subs {
		for ch := range subscribers {
			drainAndClose(ch)
		}
		delete(n.subs, kind)
	}
}

// drainAndClose removes any buffered notifications before closing the channel so
// receivers observe a closed channel immediately.
func drainAndClose(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}

var _ Notifier = (*ChangeNotifier)(nil)
