package service

import "sync"

// accountLocks serializes money movements per (guild, user) account. The
// external ledger offers no transaction fencing, so two concurrent
// operations on the same account would read-then-write independently and
// lose updates without this.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*sync.Mutex)}
}

func (a *accountLocks) lock(guildID, userID string) func() {
	key := guildID + "/" + userID

	a.mu.Lock()
	m, ok := a.locks[key]
	if !ok {
		m = &sync.Mutex{}
		a.locks[key] = m
	}
	a.mu.Unlock()

	m.Lock()
	return m.Unlock
}
