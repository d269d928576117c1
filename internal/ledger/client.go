package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/logger"
)

// Balance is the authoritative cash/bank pair held by the external ledger.
type Balance struct {
	Cash  int64 `json:"cash"`
	Bank  int64 `json:"bank"`
	Total int64 `json:"total"`
}

// Client is the balance ledger adapter. The core never writes balances
// directly; every mutation goes through here.
type Client interface {
	GetBalance(ctx context.Context, guildID, userID string) (*Balance, error)
	AddMoney(ctx context.Context, guildID, userID string, amount int64, reason string, bucket domain.CurrencyBucket) (*Balance, error)
	RemoveMoney(ctx context.Context, guildID, userID string, amount int64, reason string, bucket domain.CurrencyBucket) (*Balance, error)
}

type httpClient struct {
	baseURL string
	token   string
	timeout time.Duration
	client  *http.Client
}

// NewClient builds an HTTP ledger client. Every call carries a hard timeout;
// on timeout the operation is indeterminate and reported as
// domain.ErrLedgerTimeout, never as a definite failure.
func NewClient(baseURL, token string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		token:   token,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (c *httpClient) GetBalance(ctx context.Context, guildID, userID string) (*Balance, error) {
	return c.do(ctx, http.MethodGet, guildID, userID, nil, "GetBalance")
}

func (c *httpClient) AddMoney(ctx context.Context, guildID, userID string, amount int64, reason string, bucket domain.CurrencyBucket) (*Balance, error) {
	if amount < 0 {
		amount = -amount
	}
	return c.patch(ctx, guildID, userID, amount, reason, bucket, "AddMoney")
}

func (c *httpClient) RemoveMoney(ctx context.Context, guildID, userID string, amount int64, reason string, bucket domain.CurrencyBucket) (*Balance, error) {
	if amount < 0 {
		amount = -amount
	}
	return c.patch(ctx, guildID, userID, -amount, reason, bucket, "RemoveMoney")
}

// patch sends a signed delta for one bucket. The ledger API interprets a
// negative value as a subtraction.
func (c *httpClient) patch(ctx context.Context, guildID, userID string, delta int64, reason string, bucket domain.CurrencyBucket, op string) (*Balance, error) {
	payload := map[string]any{"reason": reason}
	switch bucket {
	case domain.BucketBank:
		payload["bank"] = delta
	default:
		payload["cash"] = delta
	}
	return c.do(ctx, http.MethodPatch, guildID, userID, payload, op)
}

func (c *httpClient) do(ctx context.Context, method, guildID, userID string, payload map[string]any, op string) (*Balance, error) {
	url := fmt.Sprintf("%s/guilds/%s/users/%s", c.baseURL, guildID, userID)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode ledger payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.ExternalServiceCall("ledger", op, "guild_id", guildID, "user_id", userID)
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.ExternalServiceResult("ledger", op, domain.ErrLedgerTimeout)
			return nil, domain.ErrLedgerTimeout
		}
		logger.ExternalServiceResult("ledger", op, err)
		return nil, fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.ExternalServiceResult("ledger", op, domain.ErrAccountNotFound)
		return nil, domain.ErrAccountNotFound
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("ledger returned status %d: %s", resp.StatusCode, string(data))
		logger.ExternalServiceResult("ledger", op, err)
		return nil, err
	}

	var bal Balance
	if err := json.NewDecoder(resp.Body).Decode(&bal); err != nil {
		logger.ExternalServiceResult("ledger", op, err)
		return nil, fmt.Errorf("failed to decode ledger response: %w", err)
	}
	logger.ExternalServiceResult("ledger", op, nil, "cash", bal.Cash, "bank", bal.Bank)
	return &bal, nil
}
