package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/suiboard/suiboard-backend/pkg/logging"
)

// Signer is the external sign-and-submit capability. Implementations hold
// the user's key material; this package never sees it.
type Signer interface {
	// SignAndSubmit signs the call and submits it, returning the
	// transaction digest. An error means nothing was committed.
	SignAndSubmit(ctx context.Context, call *CallSpec) (string, error)
}

// WalletBridgeSigner forwards calls to a local wallet bridge over HTTP.
// The bridge owns the key, prompts the user and submits on approval.
type WalletBridgeSigner struct {
	bridgeURL string
	client    *http.Client
	logger    logging.Logger
}

var _ Signer = (*WalletBridgeSigner)(nil)

func NewWalletBridgeSigner(bridgeURL string, logger logging.Logger) *WalletBridgeSigner {
	return &WalletBridgeSigner{
		bridgeURL: bridgeURL,
		// No retry here: re-submitting a signed transaction is not safe
		// and re-prompting the user on a flaky link is hostile.
		client: &http.Client{Timeout: 120 * time.Second},
		logger: logger,
	}
}

type bridgeResponse struct {
	Digest string `json:"digest"`
	Error  string `json:"error"`
}

func (s *WalletBridgeSigner) SignAndSubmit(ctx context.Context, call *CallSpec) (string, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return "", fmt.Errorf("failed to encode call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.bridgeURL+"/sign-and-submit", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wallet bridge unreachable: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Warnf("Failed to close bridge response body: %v", cerr)
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read bridge response: %w", err)
	}

	var bridged bridgeResponse
	if err := json.Unmarshal(respBody, &bridged); err != nil {
		return "", fmt.Errorf("malformed bridge response (status %d): %s", resp.StatusCode, string(respBody))
	}
	if bridged.Error != "" {
		return "", fmt.Errorf("%s", bridged.Error)
	}
	if bridged.Digest == "" {
		return "", fmt.Errorf("bridge returned no digest (status %d)", resp.StatusCode)
	}

	s.logger.Infof("Transaction submitted: %s", bridged.Digest)
	return bridged.Digest, nil
}
