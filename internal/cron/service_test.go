package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"github.com/damsoledevelopers/spireleap-console/pkg/metrics"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type countingJob struct {
	name string
	err  error
	runs int
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestRunOnceRunsEveryJobEvenAfterFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCronJobMetrics(reg)
	ok := &countingJob{name: "ok"}
	bad := &countingJob{name: "bad", err: errors.New("boom")}
	lock, err := NewRedisLock(redisclient.NewMemory(), "cron:lock", time.Minute)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: NewRegistry(bad, ok), Lock: lock, Metrics: m})
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if ok.runs != 1 || bad.runs != 1 {
		t.Fatalf("expected both jobs to run once, got ok=%d bad=%d", ok.runs, bad.runs)
	}
	if n, err := testutil.GatherAndCount(reg, "cron_job_runs_total"); err != nil || n != 2 {
		t.Fatalf("expected a success and a failure series, got %d (%v)", n, err)
	}

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if ok.runs != 2 {
		t.Fatalf("lock must be released after a cycle, ok ran %d times", ok.runs)
	}
}

func TestRunOnceSkipsWhenAnotherReplicaHoldsTheLock(t *testing.T) {
	store := redisclient.NewMemory()
	other, _ := NewRedisLock(store, "cron:lock", time.Minute)
	if held, err := other.Acquire(context.Background()); err != nil || !held {
		t.Fatalf("other replica should hold the lock: %v", err)
	}
	mine, _ := NewRedisLock(store, "cron:lock", time.Minute)
	job := &countingJob{name: "ok"}
	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: NewRegistry(job), Lock: mine})
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock")
	}
	if err := mine.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := store.Get(context.Background(), "cron:lock"); err != nil {
		t.Fatalf("a non-owner release must not delete the lock: %v", err)
	}
}
