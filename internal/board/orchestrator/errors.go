package orchestrator

import (
	"errors"
	"fmt"
)

// PreconditionError is a locally-detected failure. No remote call was made
// and nothing needs to be retried or rolled back.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

func precondition(format string, args ...interface{}) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// IsPrecondition reports whether err is a precondition failure.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// SignerError is a wallet-side failure: the user declined, or the wallet
// itself faulted. Nothing reached the ledger.
type SignerError struct {
	Cancelled bool
	Raw       string
}

func (e *SignerError) Error() string {
	if e.Cancelled {
		return "transaction cancelled in the wallet"
	}
	return "wallet error: " + e.Raw
}

// LedgerAbortError is an execution failure reported by the ledger after the
// call was accepted. Classified is true when the abort matched a known
// signature; the raw text is always preserved for diagnosis.
type LedgerAbortError struct {
	Code       int64
	Message    string
	Raw        string
	Classified bool
}

func (e *LedgerAbortError) Error() string {
	if e.Classified {
		return e.Message
	}
	return "transaction failed: " + e.Raw
}

// ErrFinalityUncertain marks a finality wait that failed after submission.
// The transaction may still have been committed; callers must not assume it
// failed and must not roll anything back.
var ErrFinalityUncertain = errors.New("could not confirm finality; the transaction may still have succeeded")
