package providerfactory

import (
	"context"
	"testing"
	"time"

	internal "mercator-hq/ganymede/internal/providers"
)

func TestNewRefreshScheduler_InvalidSchedule(t *testing.T) {
	d := NewDirectory(NewRegistry())
	defer d.Close()

	if _, err := NewRefreshScheduler(d, "every other tuesday", time.Minute); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestRefreshScheduler_RunRefreshesAllProviders(t *testing.T) {
	a := internal.NewMockClient("alpha", "mock", "m1")
	b := internal.NewMockClient("beta", "mock", "m1")

	d := NewDirectory(registryFor(a, b))
	defer d.Close()

	if err := d.InitializeAll(context.Background(), []ProviderSpec{spec("alpha", nil), spec("beta", nil)}); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}

	passes := 0
	s, err := NewRefreshScheduler(d, "0 * * * *", time.Minute)
	if err != nil {
		t.Fatalf("NewRefreshScheduler() failed: %v", err)
	}
	s.OnPass = func() { passes++ }

	s.run()

	if a.RefreshCalls() != 1 || b.RefreshCalls() != 1 {
		t.Errorf("expected one refresh per provider, got alpha=%d beta=%d", a.RefreshCalls(), b.RefreshCalls())
	}
	if passes != 1 {
		t.Errorf("expected OnPass once per pass, got %d", passes)
	}
}

func TestRefreshScheduler_OnPassRunsAfterFailedPass(t *testing.T) {
	a := internal.NewMockClient("alpha", "mock", "m1")

	d := NewDirectory(registryFor(a))
	defer d.Close()

	if err := d.InitializeAll(context.Background(), []ProviderSpec{spec("alpha", nil)}); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}
	a.RefreshErr = context.DeadlineExceeded

	passes := 0
	s, err := NewRefreshScheduler(d, "0 * * * *", time.Minute)
	if err != nil {
		t.Fatalf("NewRefreshScheduler() failed: %v", err)
	}
	s.OnPass = func() { passes++ }

	s.run()

	if passes != 1 {
		t.Errorf("expected OnPass after a failed pass, got %d", passes)
	}
}
