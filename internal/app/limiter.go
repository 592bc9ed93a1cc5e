package app

import "sync"

// ChatLimiter serializes work per key (the sender's Telegram id), so two presses
// from one cadet never race each other. Different keys never block.
type ChatLimiter struct {
	mu   sync.Mutex
	byID map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewChatLimiter() *ChatLimiter {
	return &ChatLimiter{byID: make(map[int64]*entry)}
}

// Lock blocks until id is free and returns its unlock func.
func (l *ChatLimiter) Lock(id int64) func() {
	l.mu.Lock()
	e, ok := l.byID[id]
	if !ok {
		e = &entry{}
		l.byID[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.byID, id)
		}
		l.mu.Unlock()
	}
}

func (l *ChatLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}
