package orchestrator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/suiboard/suiboard-backend/internal/board/types"
)

// moveAbortRe extracts the abort code from the node's error text,
// e.g. "MoveAbort(MoveLocation { ... }, 4)".
var moveAbortRe = regexp.MustCompile(`MoveAbort.*?, (\d+)\)`)

// Abort codes reported by the contract suite.
const (
	abortAlreadyClaimed     = 4 // achievement: daily reward claimed this period
	abortInsufficientPoints = 2 // shared: balance below the requested amount
)

// classifySubmitError maps a raw submit failure to its error category.
// User cancellation is a signer error, never a ledger fault. Abort codes
// map to specific messages; unknown shapes are surfaced verbatim rather
// than hidden.
func classifySubmitError(kind types.IntentKind, err error) error {
	raw := err.Error()
	lower := strings.ToLower(raw)

	if strings.Contains(lower, "reject") || strings.Contains(lower, "denied") || strings.Contains(lower, "cancel") {
		return &SignerError{Cancelled: true, Raw: raw}
	}

	if m := moveAbortRe.FindStringSubmatch(raw); m != nil {
		code, parseErr := strconv.ParseInt(m[1], 10, 64)
		if parseErr == nil {
			return classifyAbort(kind, code, raw)
		}
	}

	if strings.Contains(lower, "insufficientfunds") ||
		strings.Contains(lower, "insufficientpoints") ||
		strings.Contains(lower, "insufficient balance") {
		return &LedgerAbortError{Message: "insufficient balance for this operation", Raw: raw, Classified: true}
	}

	if strings.Contains(lower, "bridge unreachable") || strings.Contains(lower, "wallet") {
		return &SignerError{Raw: raw}
	}

	return &LedgerAbortError{Raw: raw}
}

func classifyAbort(kind types.IntentKind, code int64, raw string) *LedgerAbortError {
	if kind == types.IntentClaimDaily && code == abortAlreadyClaimed {
		return &LedgerAbortError{
			Code:       code,
			Message:    "daily reward already claimed today, come back tomorrow",
			Raw:        raw,
			Classified: true,
		}
	}
	if code == abortInsufficientPoints {
		return &LedgerAbortError{
			Code:       code,
			Message:    "insufficient points for this operation",
			Raw:        raw,
			Classified: true,
		}
	}
	return &LedgerAbortError{Code: code, Raw: raw}
}
