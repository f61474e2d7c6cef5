// Package orchestrator drives the lifecycle of one mutating intent:
// build, sign, submit, await finality, then update the overlay and refresh
// dependent views. Failures are classified; none of them crash the
// sequence, and every path terminates in a Result.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/suiboard/suiboard-backend/internal/board/ledger"
	"github.com/suiboard/suiboard-backend/internal/board/metrics"
	"github.com/suiboard/suiboard-backend/internal/board/overlay"
	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

// State of one intent instance.
type State string

const (
	StateIdle              State = "idle"
	StateBuilding          State = "building"
	StateAwaitingSignature State = "awaiting_signature"
	StateSubmitted         State = "submitted"
	StateAwaitingFinality  State = "awaiting_finality"
	StateFinalized         State = "finalized"
	StateRejected          State = "rejected"
)

// Result is the terminal outcome of one intent execution.
type Result struct {
	State  State
	Digest string

	// FinalityUncertain is set when submission succeeded but the
	// confirmation round-trip failed. The mutation may have landed;
	// dependent views were still refreshed.
	FinalityUncertain bool
}

// Notifier receives the finalized-mutation signal.
type Notifier interface {
	OnMutationFinalized(ctx context.Context, kind types.IntentKind)
}

type Orchestrator struct {
	signer   ledger.Signer
	finality ledger.FinalityWaiter
	overlay  overlay.Store
	notifier Notifier
	logger   logging.Logger
}

func New(signer ledger.Signer, finality ledger.FinalityWaiter, overlayStore overlay.Store, notifier Notifier, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		signer:   signer,
		finality: finality,
		overlay:  overlayStore,
		notifier: notifier,
		logger:   logger,
	}
}

// Execute runs the intent to a terminal state. The returned error is one of
// the classified categories; the Result is valid in every case.
func (o *Orchestrator) Execute(ctx context.Context, intent *Intent) (*Result, error) {
	result := &Result{State: StateBuilding}
	if intent == nil || intent.Call == nil {
		result.State = StateRejected
		return result, precondition("nothing to execute")
	}

	log := o.logger.With("intent", string(intent.Kind), "account", intent.Account.String())

	result.State = StateAwaitingSignature
	digest, err := o.signer.SignAndSubmit(ctx, intent.Call)
	if err != nil {
		result.State = StateRejected
		classified := classifySubmitError(intent.Kind, err)
		metrics.IntentsTotal.WithLabelValues(string(intent.Kind), "rejected").Inc()
		log.Warnf("Intent rejected: %v", classified)
		return result, classified
	}
	result.Digest = digest
	result.State = StateAwaitingFinality
	log.Infof("Submitted, awaiting finality: %s", digest)

	waitStart := time.Now()
	err = o.finality.WaitForFinality(ctx, digest)
	metrics.FinalityWaitSeconds.Observe(time.Since(waitStart).Seconds())
	if err != nil {
		// The confirmation round-trip failed, not necessarily the
		// transaction. No rollback; dependent views still refresh.
		result.State = StateSubmitted
		result.FinalityUncertain = true
		metrics.IntentsTotal.WithLabelValues(string(intent.Kind), "uncertain").Inc()
		log.Warnf("Finality uncertain for %s: %v", digest, err)
		o.notifier.OnMutationFinalized(ctx, intent.Kind)
		return result, fmt.Errorf("%w (%s): %v", ErrFinalityUncertain, digest, err)
	}

	result.State = StateFinalized
	log.Infof("Finalized: %s", digest)

	// Reservations become visible only now: a reservation must never be
	// shown for a transaction that ends up rejected.
	if intent.Reserve != nil {
		o.overlay.Add(ctx, intent.Account, intent.Reserve.Field, intent.Reserve.Amount)
	}

	metrics.IntentsTotal.WithLabelValues(string(intent.Kind), "finalized").Inc()
	o.notifier.OnMutationFinalized(ctx, intent.Kind)
	return result, nil
}
