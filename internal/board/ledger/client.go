package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/suiboard/suiboard-backend/internal/board/metrics"
	"github.com/suiboard/suiboard-backend/pkg/logging"
	"github.com/suiboard/suiboard-backend/pkg/retry"
)

// QueryClient is the read-only boundary to the ledger. All results are
// loosely typed; the normalizer is the sole consumer of Content/Parsed.
type QueryClient interface {
	GetObject(ctx context.Context, id string) (*RawObject, error)
	GetOwnedObjects(ctx context.Context, owner string, structType string) ([]RawObject, error)
	QueryEvents(ctx context.Context, eventType string, limit int) ([]RawEvent, error)
}

// FinalityWaiter confirms that a submitted transaction became irreversible.
type FinalityWaiter interface {
	WaitForFinality(ctx context.Context, digest string) error
}

// Client speaks JSON-RPC 2.0 to a fullnode.
type Client struct {
	rpcURL     string
	httpClient *retry.HTTPClient
	logger     logging.Logger
	reqID      atomic.Int64

	finalityTimeout time.Duration
}

var _ QueryClient = (*Client)(nil)
var _ FinalityWaiter = (*Client)(nil)

func NewClient(rpcURL string, finalityTimeout time.Duration, logger logging.Logger) (*Client, error) {
	httpClient, err := retry.NewHTTPClient(retry.DefaultHTTPRetryConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	if finalityTimeout <= 0 {
		finalityTimeout = 60 * time.Second
	}
	return &Client{
		rpcURL:          rpcURL,
		httpClient:      httpClient,
		logger:          logger,
		finalityTimeout: finalityTimeout,
	}, nil
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	done := metrics.TrackRPC(method)

	body, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		ID:      c.reqID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		done(err)
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		done(err)
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoWithRetry(req)
	if err != nil {
		done(err)
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warnf("Failed to close response body: %v", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		done(err)
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		done(err)
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		done(rpcResp.Error)
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			done(err)
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	done(nil)
	return nil
}

// objectData is the node's object envelope. Version arrives as a string on
// newer nodes and as a number on older ones.
type objectData struct {
	ObjectID string                 `json:"objectId"`
	Version  json.RawMessage        `json:"version"`
	Content  map[string]interface{} `json:"content"`
}

func (d *objectData) toRaw() RawObject {
	return RawObject{
		ObjectID: d.ObjectID,
		Version:  parseVersion(d.Version),
		Content:  d.Content,
	}
}

func parseVersion(raw json.RawMessage) uint64 {
	if len(raw) == 0 {
		return 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	return 0
}

// GetObject fetches one object with its content.
func (c *Client) GetObject(ctx context.Context, id string) (*RawObject, error) {
	var result struct {
		Data *objectData `json:"data"`
	}
	params := []interface{}{id, map[string]interface{}{"showContent": true}}
	if err := c.call(ctx, "sui_getObject", params, &result); err != nil {
		return nil, err
	}
	if result.Data == nil {
		return nil, fmt.Errorf("object %s not found", id)
	}
	raw := result.Data.toRaw()
	return &raw, nil
}

// GetOwnedObjects fetches all objects of the given struct type owned by owner.
func (c *Client) GetOwnedObjects(ctx context.Context, owner string, structType string) ([]RawObject, error) {
	var result struct {
		Data []struct {
			Data *objectData `json:"data"`
		} `json:"data"`
	}
	params := []interface{}{
		owner,
		map[string]interface{}{
			"filter":  map[string]interface{}{"StructType": structType},
			"options": map[string]interface{}{"showContent": true},
		},
	}
	if err := c.call(ctx, "suix_getOwnedObjects", params, &result); err != nil {
		return nil, err
	}
	raws := make([]RawObject, 0, len(result.Data))
	for _, entry := range result.Data {
		if entry.Data == nil {
			continue
		}
		raws = append(raws, entry.Data.toRaw())
	}
	return raws, nil
}

// QueryEvents fetches up to limit events of one event type, newest first.
func (c *Client) QueryEvents(ctx context.Context, eventType string, limit int) ([]RawEvent, error) {
	var result struct {
		Data []struct {
			ID struct {
				TxDigest string `json:"txDigest"`
				EventSeq string `json:"eventSeq"`
			} `json:"id"`
			Type        string                 `json:"type"`
			ParsedJSON  map[string]interface{} `json:"parsedJson"`
			TimestampMs json.RawMessage        `json:"timestampMs"`
		} `json:"data"`
	}
	params := []interface{}{
		map[string]interface{}{"MoveEventType": eventType},
		nil,
		limit,
		true, // descending
	}
	if err := c.call(ctx, "suix_queryEvents", params, &result); err != nil {
		return nil, err
	}
	events := make([]RawEvent, 0, len(result.Data))
	for _, entry := range result.Data {
		events = append(events, RawEvent{
			TxDigest:    entry.ID.TxDigest,
			EventSeq:    entry.ID.EventSeq,
			Type:        entry.Type,
			TimestampMs: int64(parseVersion(entry.TimestampMs)),
			Parsed:      entry.ParsedJSON,
		})
	}
	return events, nil
}

// WaitForFinality polls the node until the transaction is confirmed or the
// finality timeout elapses. A timeout does NOT mean the transaction failed.
func (c *Client) WaitForFinality(ctx context.Context, digest string) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.finalityTimeout)
	defer cancel()

	retryConfig := &retry.RetryConfig{
		MaxRetries:      30,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffFactor:   1.5,
		JitterFactor:    0.2,
		LogRetryAttempt: false,
	}

	_, err := retry.Retry(waitCtx, func() (struct{}, error) {
		var result struct {
			Digest string `json:"digest"`
		}
		params := []interface{}{digest, map[string]interface{}{}}
		if err := c.call(waitCtx, "sui_getTransactionBlock", params, &result); err != nil {
			return struct{}{}, err
		}
		if result.Digest == "" {
			return struct{}{}, fmt.Errorf("transaction %s not yet confirmed", digest)
		}
		return struct{}{}, nil
	}, retryConfig, c.logger)
	if err != nil {
		return fmt.Errorf("finality confirmation for %s did not complete: %w", digest, err)
	}
	return nil
}
