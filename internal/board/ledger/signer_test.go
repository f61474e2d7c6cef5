package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suiboard/suiboard-backend/pkg/logging"
)

func TestSignAndSubmit(t *testing.T) {
	var received CallSpec
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sign-and-submit", r.URL.Path)
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received.Target, _ = payload["target"].(string)
		_, _ = w.Write([]byte(`{"digest":"0xdigest"}`))
	}))
	defer server.Close()

	signer := NewWalletBridgeSigner(server.URL, logging.NewNoopLogger())
	digest, err := signer.SignAndSubmit(context.Background(), &CallSpec{
		Target:  "0xpkg::achievement::complete_task",
		ChainID: "sui:testnet",
	})

	require.NoError(t, err)
	assert.Equal(t, "0xdigest", digest)
	assert.Equal(t, "0xpkg::achievement::complete_task", received.Target)
}

func TestSignAndSubmitBridgeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"User rejected the request"}`))
	}))
	defer server.Close()

	signer := NewWalletBridgeSigner(server.URL, logging.NewNoopLogger())
	_, err := signer.SignAndSubmit(context.Background(), &CallSpec{Target: "t"})

	require.Error(t, err)
	assert.Equal(t, "User rejected the request", err.Error())
}

func TestSignAndSubmitNoDigest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	signer := NewWalletBridgeSigner(server.URL, logging.NewNoopLogger())
	_, err := signer.SignAndSubmit(context.Background(), &CallSpec{Target: "t"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no digest")
}

func TestSignAndSubmitUnreachable(t *testing.T) {
	signer := NewWalletBridgeSigner("http://127.0.0.1:1", logging.NewNoopLogger())
	_, err := signer.SignAndSubmit(context.Background(), &CallSpec{Target: "t"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bridge unreachable")
}
