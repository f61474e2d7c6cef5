// Package overlay persists the per-account reservation overlay: points
// committed to a finalized stake, listing or vote. It is a best-effort
// display hint, not a balance: the ledger never deducts these amounts and
// nothing here ever decrements them. Reads that fail return the zero
// overlay; writes that fail are silently dropped. Overlay failures must
// never block a ledger mutation.
package overlay

import (
	"context"
	"strings"

	"github.com/suiboard/suiboard-backend/internal/board/types"
)

// Field names one reservation bucket.
type Field string

const (
	FieldStaked Field = "staked"
	FieldListed Field = "listed"
	FieldVoted  Field = "voted"
)

// Store is the reservation overlay store. Implementations swallow their own
// failures: Get degrades to the zero overlay, Add and Set to a dropped write.
type Store interface {
	Get(ctx context.Context, account types.Account) types.ReservationOverlay
	Add(ctx context.Context, account types.Account, field Field, amount uint64)
	Set(ctx context.Context, account types.Account, overlay types.ReservationOverlay)
}

func storageKey(account types.Account) string {
	return "board:reserved:" + strings.ToLower(account.String())
}
