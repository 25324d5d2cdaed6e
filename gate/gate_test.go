package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/catalogd/catalogd/catalog"
)

func TestGateAllowsUpToPermits(t *testing.T) {
	g := New(2)

	release1, err := g.TryAcquire(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	release2, err := g.TryAcquire(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	defer release1()
	defer release2()

	done := make(chan struct{})
	go func() {
		release3, err := g.TryAcquire(context.Background(), 50*time.Millisecond)
		if err == nil {
			release3()
			t.Error("third acquire should not have succeeded while both permits are held")
		}
		close(done)
	}()
	<-done
}

func TestGateTimeoutReturnsStructuredError(t *testing.T) {
	g := New(1)
	release, err := g.TryAcquire(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	_, err = g.TryAcquire(context.Background(), 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if _, ok := err.(*catalog.PartialFetchQueueTimeoutError); !ok {
		t.Fatalf("expected *catalog.PartialFetchQueueTimeoutError, got %T", err)
	}
}

func TestGateQueueDepthTracksWaiters(t *testing.T) {
	g := New(1)
	release, err := g.TryAcquire(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r, err := g.TryAcquire(context.Background(), 500*time.Millisecond)
		if err == nil {
			r()
		}
	}()

	time.Sleep(50 * time.Millisecond)
	if g.QueueDepth() != 1 {
		t.Fatalf("expected queue depth 1, got %d", g.QueueDepth())
	}
	release()
	wg.Wait()
}

func TestGatePermitsReportsCapacity(t *testing.T) {
	g := New(5)
	if g.Permits() != 5 {
		t.Fatalf("expected 5 permits, got %d", g.Permits())
	}
}
