package tokenguard

import (
	"context"
	"sync"
	"testing"
)

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricIssueSuccess)
	m.Inc(MetricIssueSuccess)
	m.Add(MetricBlacklistCollected, 5)

	if got := m.Value(MetricIssueSuccess); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricIssueSuccess] != 2 {
		t.Fatalf("snapshot mismatch: %d", snap.Counters[MetricIssueSuccess])
	}
	if snap.Counters[MetricBlacklistCollected] != 5 {
		t.Fatalf("snapshot mismatch: %d", snap.Counters[MetricBlacklistCollected])
	}
	if snap.Counters[MetricReplayDetected] != 0 {
		t.Fatalf("untouched counter must be zero, got %d", snap.Counters[MetricReplayDetected])
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricIssueSuccess)
	m.Add(MetricBlacklistCollected, 5)

	if m.Enabled() {
		t.Fatal("metric set should report disabled")
	}
	for id, v := range m.Snapshot().Counters {
		if v != 0 {
			t.Fatalf("counter %d recorded %d while disabled", id, v)
		}
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricVerifySuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricVerifySuccess); got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
}

func TestEngineCountsLifecycleEvents(t *testing.T) {
	engine := newTestEngine(t, testConfig())
	ctx := context.Background()

	pair, err := engine.Issue(ctx, Identity{UserID: "alice"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := engine.VerifyAccess(ctx, pair.AccessToken); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	next, err := engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatal("expected replay rejection")
	}
	if err := engine.Revoke(ctx, next.RefreshToken); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	expect := map[MetricID]uint64{
		MetricIssueSuccess:   1,
		MetricVerifySuccess:  1,
		MetricRefreshSuccess: 1,
		MetricReplayDetected: 1,
		MetricFamilyRevoked:  1,
		MetricRevokeSuccess:  1,
	}
	for id, want := range expect {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("counter %d: expected %d, got %d", id, want, got)
		}
	}
}

func TestEngineMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	engine := newTestEngine(t, cfg)

	if _, err := engine.Issue(context.Background(), Identity{UserID: "alice"}); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricIssueSuccess]; got != 0 {
		t.Fatalf("disabled metrics recorded %d", got)
	}
}
