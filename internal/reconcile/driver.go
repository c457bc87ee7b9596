// Package reconcile drives staged webhook envelopes through
// classification, normalization, persistence, and object lifecycle.
package reconcile

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-dispute-reconciler/internal/classify"
	"github.com/imrishuroy/go-dispute-reconciler/internal/disputes"
	"github.com/imrishuroy/go-dispute-reconciler/internal/envelope"
	"github.com/imrishuroy/go-dispute-reconciler/internal/gateway"
	"github.com/imrishuroy/go-dispute-reconciler/internal/normalize"
)

// ObjectStore is the staging-bucket surface the driver consumes.
type ObjectStore interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	MoveTo(ctx context.Context, key, target string) error
}

// Sink persists canonical records over the run's shared connection.
type Sink interface {
	Insert(ctx context.Context, rec *disputes.Record) error
	Alive() bool
}

// Locker serializes scheduled runs. Nil Locker means no locking.
type Locker interface {
	Acquire(ctx context.Context, key, runID string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Metrics receives per-run counters. Nil Metrics means no reporting.
type Metrics interface {
	PublishRun(ctx context.Context, listed, archived, quarantined, failed int) error
}

const lockKey = "reconcile"

// outcome is the terminal state of one staged object within a run.
type outcome int

const (
	outcomeArchived outcome = iota
	outcomeQuarantined
	outcomeLeftStaged
)

// Driver lists the staging bucket and walks every object through the
// per-object state machine. Objects are processed sequentially; a failure
// on one object never aborts the rest of the run. Only a dead database
// connection or a failed listing is fatal.
type Driver struct {
	Staging          ObjectStore
	Verifier         gateway.Verifier
	OpenSink         func(ctx context.Context) (Sink, func(), error)
	ArchiveBucket    string
	QuarantineBucket string
	Lock             Locker  // optional
	Metrics          Metrics // optional
}

// Run executes one reconciliation pass over everything currently staged.
func (d *Driver) Run(ctx context.Context) error {
	if d.Lock != nil {
		runID := uuid.NewString()
		acquired, err := d.Lock.Acquire(ctx, lockKey, runID)
		if err != nil {
			return fmt.Errorf("acquire run lock: %w", err)
		}
		if !acquired {
			log.Printf("[worker] run lock held elsewhere, skipping run")
			return nil
		}
		defer func() {
			if err := d.Lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				// TTL expiry will clear it
				log.Printf("[worker] release run lock: %v", err)
			}
		}()
	}

	// One connection for the whole listing; a connection failure here is
	// fatal and the next scheduled run retries everything still staged.
	sink, closeSink, err := d.OpenSink(ctx)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer closeSink()

	keys, err := d.Staging.List(ctx)
	if err != nil {
		return err
	}
	log.Printf("[worker] reconciling %d staged objects", len(keys))

	var archived, quarantined, failed int
	for _, key := range keys {
		out, err := d.process(ctx, key, sink)
		if err != nil {
			log.Printf("[worker] object %s: %v", key, err)
		}
		switch out {
		case outcomeArchived:
			archived++
		case outcomeQuarantined:
			quarantined++
		case outcomeLeftStaged:
			failed++
			if !sink.Alive() {
				return fmt.Errorf("database connection lost after object %s: %w", key, err)
			}
		}
	}

	log.Printf("[worker] run complete: archived=%d quarantined=%d left_staged=%d",
		archived, quarantined, failed)

	if d.Metrics != nil {
		if err := d.Metrics.PublishRun(ctx, len(keys), archived, quarantined, failed); err != nil {
			log.Printf("[worker] publish run metrics: %v", err)
		}
	}
	return nil
}

// process walks one staged object through
// Staged -> Classifying -> {Normalizing -> Loading -> Archived} | Quarantined.
// A sink failure leaves the object staged for the next run.
func (d *Driver) process(ctx context.Context, key string, sink Sink) (outcome, error) {
	raw, err := d.Staging.Get(ctx, key)
	if err != nil {
		// unreadable this run; leave staged and retry next run
		return outcomeLeftStaged, err
	}

	env, err := envelope.Decode(raw)
	if err != nil {
		return d.quarantine(ctx, key, fmt.Errorf("undecodable envelope: %w", err))
	}

	var rec *disputes.Record
	switch classify.Classify(env) {
	case classify.SourceGateway:
		rec, err = normalize.Gateway(env, d.Verifier)
	case classify.SourcePlatform:
		rec, err = normalize.Platform(env)
	default:
		return d.quarantine(ctx, key, fmt.Errorf("unrecognized source"))
	}
	if err != nil {
		return d.quarantine(ctx, key, err)
	}

	if err := sink.Insert(ctx, rec); err != nil {
		// Not fatal to the run; the object stays staged and is retried on
		// the next scheduled pass.
		return outcomeLeftStaged, err
	}

	if err := d.Staging.MoveTo(ctx, key, d.ArchiveBucket); err != nil {
		// Row committed but object still staged (or in both buckets).
		// Reprocessing is tolerated; the schema handles duplicates.
		return outcomeLeftStaged, err
	}
	return outcomeArchived, nil
}

func (d *Driver) quarantine(ctx context.Context, key string, cause error) (outcome, error) {
	if err := d.Staging.MoveTo(ctx, key, d.QuarantineBucket); err != nil {
		return outcomeLeftStaged, fmt.Errorf("%v (quarantine move failed: %w)", cause, err)
	}
	return outcomeQuarantined, cause
}
