package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenLocks(t *testing.T) {
	var (
		locks   = newTokenLocks()
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders = 0
		max     = 0
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			locks.lock("token-a")
			defer locks.unlock("token-a")

			mu.Lock()
			holders++
			if holders > max {
				max = holders
			}
			mu.Unlock()

			mu.Lock()
			holders--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max, "un solo poseedor del candado por token")
	assert.Empty(t, locks.locks, "las entradas se liberan con la última referencia")
}

func TestTokenLocks_IndependentTokens(t *testing.T) {
	locks := newTokenLocks()

	locks.lock("token-a")
	done := make(chan struct{})
	go func() {
		locks.lock("token-b")
		locks.unlock("token-b")
		close(done)
	}()

	<-done
	locks.unlock("token-a")

	assert.Empty(t, locks.locks)
}
