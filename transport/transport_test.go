//go:build !tinygo && !baremetal

package transport

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	proto "github.com/ystepanoff/nrfradio/protocol"
)

func TestCompletionTake(t *testing.T) {
	var c Completion

	if c.Take(EventEnd) {
		t.Fatal("Take() on empty completion = true")
	}

	c.raise(EventEnd)
	c.raise(EventEnd)
	if !c.Pending(EventEnd) {
		t.Fatal("Pending() after raise = false")
	}
	if c.Pending(EventReady) {
		t.Error("Pending(READY) = true, events must be independent")
	}
	if !c.Take(EventEnd) {
		t.Fatal("Take() after raise = false")
	}
	// two raises collapse into one pending signal
	if c.Take(EventEnd) {
		t.Error("second Take() = true, want false")
	}

	c.raise(EventDisabled)
	c.Clear(EventDisabled)
	if c.Pending(EventDisabled) {
		t.Error("Pending() after Clear = true")
	}
}

func TestCompletionWait(t *testing.T) {
	var c Completion

	go func() {
		time.Sleep(5 * time.Millisecond)
		c.raise(EventEnd)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Wait(ctx, EventEnd, nil); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if c.Pending(EventEnd) {
		t.Error("Wait() did not consume the signal")
	}
}

func TestCompletionWaitTimeout(t *testing.T) {
	var c Completion
	var idles atomic.Int32

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.Wait(ctx, EventEnd, func() {
		idles.Add(1)
		time.Sleep(time.Millisecond)
	})
	if !errors.Is(err, proto.ErrTimeout) {
		t.Fatalf("Wait() error = %v, want %v", err, proto.ErrTimeout)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want it to wrap %v", err, context.DeadlineExceeded)
	}
	if idles.Load() == 0 {
		t.Error("idle hook was never called")
	}
}

func TestCriticalTokenExpires(t *testing.T) {
	var leaked *CriticalSection

	err := Critical(func(cs *CriticalSection) error {
		if !cs.valid() {
			t.Error("token is not valid inside the section")
		}
		leaked = cs
		return nil
	})
	if err != nil {
		t.Fatalf("Critical() error = %v", err)
	}
	if leaked.valid() {
		t.Error("token is still valid after the section closed")
	}

	var zero *CriticalSection
	if zero.valid() {
		t.Error("nil token is valid")
	}
	if (&CriticalSection{}).valid() {
		t.Error("hand-made token is valid")
	}
}

func TestCriticalReturnsError(t *testing.T) {
	want := errors.New("boom")
	if err := Critical(func(*CriticalSection) error { return want }); err != want {
		t.Fatalf("Critical() error = %v, want %v", err, want)
	}
	// the mask must have been released
	done := make(chan struct{})
	go DispatchInterrupt(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("interrupt still masked after Critical returned an error")
	}
}

func TestCriticalMasksInterrupt(t *testing.T) {
	var ran atomic.Bool
	done := make(chan struct{})

	err := Critical(func(*CriticalSection) error {
		go func() {
			DispatchInterrupt(func() { ran.Store(true) })
			close(done)
		}()
		time.Sleep(10 * time.Millisecond)
		if ran.Load() {
			t.Error("interrupt handler ran inside the critical section")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Critical() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("interrupt handler never ran")
	}
	if !ran.Load() {
		t.Error("interrupt handler did not run after the section closed")
	}
}

func TestTaskAndEventNames(t *testing.T) {
	tasks := map[Task]string{
		TaskTXEN:    "TXEN",
		TaskRXEN:    "RXEN",
		TaskSTART:   "START",
		TaskSTOP:    "STOP",
		TaskDISABLE: "DISABLE",
		Task(99):    "UNKNOWN",
	}
	for task, want := range tasks {
		if got := task.String(); got != want {
			t.Errorf("Task(%d).String() = %q, want %q", task, got, want)
		}
	}

	events := map[Event]string{
		EventReady:    "READY",
		EventEnd:      "END",
		EventDisabled: "DISABLED",
		numEvents:     "UNKNOWN",
	}
	for e, want := range events {
		if got := e.String(); got != want {
			t.Errorf("Event(%d).String() = %q, want %q", e, got, want)
		}
	}
}

func TestCriticalNests(t *testing.T) {
	var ran atomic.Bool
	done := make(chan struct{})

	err := Critical(func(outer *CriticalSection) error {
		go func() {
			DispatchInterrupt(func() { ran.Store(true) })
			close(done)
		}()

		var inner *CriticalSection
		if err := Critical(func(cs *CriticalSection) error {
			inner = cs
			if !outer.valid() || !cs.valid() {
				t.Error("token invalid inside nested section")
			}
			return nil
		}); err != nil {
			return err
		}

		if inner.valid() {
			t.Error("inner token still valid after its section closed")
		}
		if !outer.valid() {
			t.Error("outer token invalidated by inner section")
		}
		time.Sleep(10 * time.Millisecond)
		if ran.Load() {
			t.Error("interrupt handler ran after the inner section closed")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Critical() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("interrupt handler never ran after the outer section closed")
	}
}
