package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/intake/pkg/lifecycle"
)

type flag struct{ ok atomic.Bool }

func (f *flag) Ready() bool { return f.ok.Load() }

func TestReadyAfterStartup(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() { count.Add(1) })
	}
	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestReadinessChecks(t *testing.T) {
	lc := lifecycle.New()
	db := &flag{}
	lc.Check("database", db)
	lc.WaitForStartup()

	if lc.Ready() {
		t.Error("should not be ready while a check fails")
	}
	if names := lc.NotReady(); len(names) != 1 || names[0] != "database" {
		t.Errorf("NotReady = %v, want [database]", names)
	}

	db.ok.Store(true)
	if !lc.Ready() {
		t.Error("should be ready once every check passes")
	}
}

func TestShutdown(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()
	block := make(chan struct{})
	defer close(block)

	lc.OnShutdown(func() { <-block })

	if err := lc.Shutdown(20 * time.Millisecond); err == nil {
		t.Error("expected shutdown timeout error")
	}
}
