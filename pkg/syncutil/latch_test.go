package syncutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitForLatch(t *testing.T, latch *Latch, wg *sync.WaitGroup) {
	defer wg.Done()
	latch.Wait()
	assert.Equal(t, 0, latch.GetCount())
}

func TestLatchTwoThreads(t *testing.T) {
	latch := NewLatch(2)

	var wg sync.WaitGroup
	wg.Add(2)
	go waitForLatch(t, latch, &wg)
	go waitForLatch(t, latch, &wg)

	latch.CountDown()
	latch.CountDown()

	waitTimeout(t, &wg, time.Second)
}

func TestLatchTwoThreadsPreDecremented(t *testing.T) {
	latch := NewLatch(2)
	latch.CountDown()
	latch.CountDown()

	var wg sync.WaitGroup
	wg.Add(2)
	go waitForLatch(t, latch, &wg)
	go waitForLatch(t, latch, &wg)

	waitTimeout(t, &wg, time.Second)
}

func TestLatchTwoThreadsTwoLatches(t *testing.T) {
	first := NewLatch(1)
	second := NewLatch(1)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		first.Wait()
		second.CountDown()
		assert.Equal(t, 0, first.GetCount())
		assert.Equal(t, 0, second.GetCount())
	}()

	go func() {
		defer wg.Done()
		first.CountDown()
		second.Wait()
		assert.Equal(t, 0, first.GetCount())
		assert.Equal(t, 0, second.GetCount())
	}()

	waitTimeout(t, &wg, time.Second)
}

func TestLatchZeroCountWaitsImmediately(t *testing.T) {
	latch := NewLatch(0)
	latch.Wait()
	assert.Equal(t, 0, latch.GetCount())
}

func TestLatchCountDownPastZeroIsNoop(t *testing.T) {
	latch := NewLatch(1)
	latch.CountDown()
	latch.CountDown()
	assert.Equal(t, 0, latch.GetCount())
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for goroutines")
	}
}
