package shop

import (
	"sync"
	"time"
)

// Notifier shows one message with a progress value that shrinks from 100 to 0
// over its lifetime. Showing a new message restarts the countdown, so at most
// one countdown runs at a time.
type Notifier struct {
	duration time.Duration
	interval time.Duration
	onChange func()

	mu       sync.Mutex
	message  string
	progress float64
	stop     chan struct{}
}

func NewNotifier(duration, interval time.Duration, onChange func()) *Notifier {
	if onChange == nil {
		onChange = func() {}
	}
	return &Notifier{duration: duration, interval: interval, onChange: onChange}
}

func (n *Notifier) Show(message string) {
	n.mu.Lock()
	if n.stop != nil {
		close(n.stop)
	}
	stop := make(chan struct{})
	n.stop = stop
	n.message = message
	n.progress = 100
	n.mu.Unlock()

	go n.countdown(stop)
	n.onChange()
}

func (n *Notifier) countdown(stop chan struct{}) {
	decrement := float64(n.interval) / float64(n.duration) * 100
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		n.mu.Lock()
		if n.stop != stop {
			n.mu.Unlock()
			return
		}
		n.progress -= decrement
		done := n.progress <= 0
		if done {
			n.progress = 0
			n.message = ""
			n.stop = nil
		}
		n.mu.Unlock()

		n.onChange()
		if done {
			return
		}
	}
}

// Current returns the message and its remaining progress; the message is
// empty once the countdown finished.
func (n *Notifier) Current() (string, float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message, n.progress
}

// Active reports whether a countdown is running.
func (n *Notifier) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stop != nil
}

func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stop != nil {
		close(n.stop)
		n.stop = nil
	}
	n.message = ""
	n.progress = 0
}

const (
	MessageSuccess = "success"
	MessageError   = "error"
)

type Message struct {
	Type string
	Text string
}

// Banner holds a message that clears itself after a fixed time. A newer
// message replaces the older one and restarts the timer.
type Banner struct {
	ttl      time.Duration
	onChange func()

	mu    sync.Mutex
	msg   Message
	gen   uint64
	timer *time.Timer
}

func NewBanner(ttl time.Duration, onChange func()) *Banner {
	if onChange == nil {
		onChange = func() {}
	}
	return &Banner{ttl: ttl, onChange: onChange}
}

func (b *Banner) Show(kind, text string) {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.msg = Message{Type: kind, Text: text}
	b.timer = time.AfterFunc(b.ttl, func() { b.expire(gen) })
	b.mu.Unlock()
	b.onChange()
}

func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.msg = Message{}
	b.timer = nil
	b.mu.Unlock()
	b.onChange()
}

func (b *Banner) Current() Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg
}

func (b *Banner) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	b.msg = Message{}
}
