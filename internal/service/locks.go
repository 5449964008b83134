package service

import "sync"

// tokenLocks serializa la redención por token: dos envíos casi simultáneos
// del mismo formulario no deben pasar ambos la comprobación de token usado.
// Las entradas se liberan al soltar la última referencia.
type tokenLocks struct {
	mu    sync.Mutex
	locks map[string]*tokenLock
}

type tokenLock struct {
	mu   sync.Mutex
	refs int
}

func newTokenLocks() *tokenLocks {
	return &tokenLocks{locks: map[string]*tokenLock{}}
}

func (l *tokenLocks) lock(token string) {
	l.mu.Lock()
	entry, ok := l.locks[token]
	if !ok {
		entry = &tokenLock{}
		l.locks[token] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *tokenLocks) unlock(token string) {
	l.mu.Lock()
	entry, ok := l.locks[token]
	if !ok {
		l.mu.Unlock()

		return
	}

	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, token)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
