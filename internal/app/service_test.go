package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	block    bool

	mu      sync.Mutex
	stopped int
	order   *[]string
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.startErr
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	return nil
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	var order []string
	failing := &fakeService{name: "http", startErr: errors.New("bind: address already in use"), order: &order}
	blocking := &fakeService{name: "worker", block: true, order: &order}
	closer := &fakeService{name: "container", block: true, order: &order}

	err := NewRunner(failing, blocking, closer).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "bind: address already in use" {
		t.Fatalf("expected start error, got %v", err)
	}
	if len(order) != 3 || order[0] != "http" || order[2] != "container" {
		t.Fatalf("services should stop in registration order, got %v", order)
	}
}

func TestRunnerCancelIsClean(t *testing.T) {
	svc := &fakeService{name: "http", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRunner(svc).Run(ctx, time.Second, nil)
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled run should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop after cancel")
	}
	if svc.stopped != 1 {
		t.Fatalf("stop should be called once, got %d", svc.stopped)
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Mode: " API "})
	if opts.Mode != ModeAPI {
		t.Fatalf("mode want api got %q", opts.Mode)
	}
	if opts.ShutdownTimeout != 15*time.Second || opts.Logger == nil {
		t.Fatalf("defaults not applied: %+v", opts)
	}
	if ValidMode("cron") {
		t.Fatalf("cron is not a valid mode")
	}
}

func TestCloserServiceRunsOnStop(t *testing.T) {
	closed := false
	svc := newCloserService("container", func(context.Context) error {
		closed = true
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("start should return on cancel, got %v", err)
	}
	if err := svc.Stop(context.Background()); err != nil || !closed {
		t.Fatalf("stop should invoke close, err=%v closed=%v", err, closed)
	}
}
