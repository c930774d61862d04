package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stiarchives/portal/internal/core/ports"
)

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []ports.EmailMessage
	err    error
	block  chan struct{}
	called chan struct{}
}

func (n *recordingNotifier) Send(_ context.Context, msg ports.EmailMessage) error {
	if n.called != nil {
		n.called <- struct{}{}
	}
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) messages() []ports.EmailMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ports.EmailMessage, len(n.sent))
	copy(out, n.sent)
	return out
}

func TestDispatcher_DeliversAndDrainsOnShutdown(t *testing.T) {
	n := &recordingNotifier{}
	d := NewDispatcher(2, n, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 10; i++ {
		d.Enqueue(ports.EmailMessage{To: "maria@gmail.com", Subject: "s", Body: string(rune('a' + i))})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	got := n.messages()
	if len(got) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(got))
	}
	for i, m := range got {
		if m.Body != string(rune('a'+i)) {
			t.Fatalf("messages for one recipient out of order at %d: %q", i, m.Body)
		}
	}
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	d := NewDispatcher(1, n, zerolog.Nop())
	d.Start(context.Background())

	d.Enqueue(ports.EmailMessage{To: "a@b.c"})
	d.Enqueue(ports.EmailMessage{To: "a@b.c"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestDispatcher_EnqueueDoesNotBlockWhenFull(t *testing.T) {
	n := &recordingNotifier{block: make(chan struct{}), called: make(chan struct{}, 1)}
	d := NewDispatcher(1, n, zerolog.Nop())
	d.Start(context.Background())

	d.Enqueue(ports.EmailMessage{To: "a@b.c"})
	<-n.called

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(ports.EmailMessage{To: "a@b.c"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
	n.called = nil
	close(n.block)
}

func TestDispatcher_EnqueueAfterShutdownDrops(t *testing.T) {
	n := &recordingNotifier{}
	d := NewDispatcher(1, n, zerolog.Nop())
	d.Start(context.Background())

	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	d.Enqueue(ports.EmailMessage{To: "a@b.c"})

	if len(n.messages()) != 0 {
		t.Fatalf("expected no deliveries after shutdown")
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(8, &recordingNotifier{}, zerolog.Nop())
	a := d.shardIndex("Maria@Gmail.com")
	b := d.shardIndex("maria@gmail.com")
	if a != b {
		t.Fatalf("recipient casing changed shard: %d vs %d", a, b)
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard out of range: %d", a)
	}
}
