package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suiboard/suiboard-backend/internal/board/ledger"
	"github.com/suiboard/suiboard-backend/internal/board/overlay"
	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

type fakeSigner struct {
	digest string
	err    error
	calls  int
}

func (f *fakeSigner) SignAndSubmit(ctx context.Context, call *ledger.CallSpec) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.digest, nil
}

type fakeFinality struct {
	err   error
	calls int
}

func (f *fakeFinality) WaitForFinality(ctx context.Context, digest string) error {
	f.calls++
	return f.err
}

type addCall struct {
	account types.Account
	field   overlay.Field
	amount  uint64
}

type fakeStore struct {
	adds []addCall
}

func (f *fakeStore) Get(ctx context.Context, account types.Account) types.ReservationOverlay {
	return types.ReservationOverlay{}
}

func (f *fakeStore) Add(ctx context.Context, account types.Account, field overlay.Field, amount uint64) {
	f.adds = append(f.adds, addCall{account: account, field: field, amount: amount})
}

func (f *fakeStore) Set(ctx context.Context, account types.Account, ov types.ReservationOverlay) {}

type fakeNotifier struct {
	kinds []types.IntentKind
}

func (f *fakeNotifier) OnMutationFinalized(ctx context.Context, kind types.IntentKind) {
	f.kinds = append(f.kinds, kind)
}

func stakeIntent() *Intent {
	return &Intent{
		Kind:    types.IntentStake,
		Account: "0xme",
		Call:    &ledger.CallSpec{Target: "0xpkg::staking::stake_points"},
		Reserve: &ReserveEffect{Field: overlay.FieldStaked, Amount: 20},
	}
}

func TestExecuteFinalized(t *testing.T) {
	signer := &fakeSigner{digest: "0xdigest"}
	finality := &fakeFinality{}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	orch := New(signer, finality, store, notifier, logging.NewNoopLogger())

	result, err := orch.Execute(context.Background(), stakeIntent())
	require.NoError(t, err)
	assert.Equal(t, StateFinalized, result.State)
	assert.Equal(t, "0xdigest", result.Digest)
	assert.False(t, result.FinalityUncertain)

	require.Len(t, store.adds, 1)
	assert.Equal(t, addCall{account: "0xme", field: overlay.FieldStaked, amount: 20}, store.adds[0])
	assert.Equal(t, []types.IntentKind{types.IntentStake}, notifier.kinds)
}

func TestExecuteNoReserveEffect(t *testing.T) {
	signer := &fakeSigner{digest: "0xd"}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	orch := New(signer, &fakeFinality{}, store, notifier, logging.NewNoopLogger())

	intent := &Intent{
		Kind:    types.IntentCompleteTask,
		Account: "0xme",
		Call:    &ledger.CallSpec{Target: "0xpkg::achievement::complete_task"},
	}
	result, err := orch.Execute(context.Background(), intent)
	require.NoError(t, err)
	assert.Equal(t, StateFinalized, result.State)
	assert.Empty(t, store.adds)
	assert.Equal(t, []types.IntentKind{types.IntentCompleteTask}, notifier.kinds)
}

func TestExecuteSignerRejection(t *testing.T) {
	signer := &fakeSigner{err: errors.New("User rejected the request")}
	finality := &fakeFinality{}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	orch := New(signer, finality, store, notifier, logging.NewNoopLogger())

	result, err := orch.Execute(context.Background(), stakeIntent())
	require.Error(t, err)
	assert.Equal(t, StateRejected, result.State)

	var signerErr *SignerError
	require.ErrorAs(t, err, &signerErr)
	assert.True(t, signerErr.Cancelled)

	// nothing downstream happened
	assert.Equal(t, 0, finality.calls)
	assert.Empty(t, store.adds)
	assert.Empty(t, notifier.kinds)
}

func TestExecuteFinalityUncertain(t *testing.T) {
	signer := &fakeSigner{digest: "0xdigest"}
	finality := &fakeFinality{err: errors.New("timed out waiting for transaction")}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	orch := New(signer, finality, store, notifier, logging.NewNoopLogger())

	result, err := orch.Execute(context.Background(), stakeIntent())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFinalityUncertain)
	assert.Equal(t, StateSubmitted, result.State)
	assert.Equal(t, "0xdigest", result.Digest)
	assert.True(t, result.FinalityUncertain)

	// overlay is not touched without confirmation, but dependent views
	// still refresh since the transaction may have landed
	assert.Empty(t, store.adds)
	assert.Equal(t, []types.IntentKind{types.IntentStake}, notifier.kinds)
}

func TestExecuteNilIntent(t *testing.T) {
	orch := New(&fakeSigner{}, &fakeFinality{}, &fakeStore{}, &fakeNotifier{}, logging.NewNoopLogger())

	result, err := orch.Execute(context.Background(), nil)
	assert.True(t, IsPrecondition(err))
	assert.Equal(t, StateRejected, result.State)

	result, err = orch.Execute(context.Background(), &Intent{Kind: types.IntentStake})
	assert.True(t, IsPrecondition(err))
	assert.Equal(t, StateRejected, result.State)
}

func TestExecuteLedgerAbort(t *testing.T) {
	signer := &fakeSigner{err: errors.New(`Failure { error: MoveAbort(MoveLocation { module: achievement }, 4) }`)}
	store := &fakeStore{}
	orch := New(signer, &fakeFinality{}, store, &fakeNotifier{}, logging.NewNoopLogger())

	intent := &Intent{
		Kind:    types.IntentClaimDaily,
		Account: "0xme",
		Call:    &ledger.CallSpec{Target: "0xpkg::achievement::claim_daily_reward"},
	}
	result, err := orch.Execute(context.Background(), intent)
	require.Error(t, err)
	assert.Equal(t, StateRejected, result.State)

	var abortErr *LedgerAbortError
	require.ErrorAs(t, err, &abortErr)
	assert.True(t, abortErr.Classified)
	assert.Contains(t, abortErr.Error(), "already claimed")
	assert.Empty(t, store.adds)
}
