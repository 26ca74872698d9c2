package keylock

import (
	"errors"
	"sync"
	"testing"
)

func TestDoSerializesSameKey(t *testing.T) {
	kl := New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			_ = kl.Do("same", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
}

func TestDoPropagatesError(t *testing.T) {
	kl := New()
	want := errors.New("boom")

	if got := kl.Do("k", func() error { return want }); !errors.Is(got, want) {
		t.Fatalf("Do() error = %v, want %v", got, want)
	}
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	kl := New()

	kl.Lock("a")
	defer kl.Unlock("a")

	done := make(chan struct{})
	go func() {
		kl.Lock("b")
		kl.Unlock("b")
		close(done)
	}()

	<-done
}

func TestEntriesReclaimed(t *testing.T) {
	kl := New()

	kl.Lock("x")
	kl.Unlock("x")

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if len(kl.locks) != 0 {
		t.Fatalf("expected no retained entries, got %d", len(kl.locks))
	}
}
