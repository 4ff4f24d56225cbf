package waitlistapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/retry"
)

const (
	joinPath      = "/api/waitlist"
	healthPath    = "/api/health"
	referralsPath = "/api/referrals/"

	// HealthTimeout bounds the warm-up probe.
	HealthTimeout = 5 * time.Second
	// ReferralCountTimeout bounds the referral lookup shown on the
	// confirmation view.
	ReferralCountTimeout = 2 * time.Second

	maxErrorBody = 4 << 10
)

type Client struct {
	baseURL         string
	http            *http.Client
	policy          retry.Policy
	referralTimeout time.Duration
	logger          *zap.Logger
}

// NewClient builds a client for the waitlist backend at baseURL. Only the
// policy's MaxAttempts, AttemptTimeout and Delay are used; timeouts are the
// only retryable failure.
func NewClient(baseURL string, policy retry.Policy, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{},
		referralTimeout: ReferralCountTimeout,
		logger:          logger,
	}

	policy.Retryable = IsTimeout
	policy.OnRetry = func(attempt uint, err error) {
		c.logger.Warn("waitlist submission attempt failed",
			zap.Uint("attempt", attempt+1),
			zap.Uint("max_attempts", policy.MaxAttempts),
			zap.Error(err),
		)
	}
	c.policy = policy
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Join posts the submission, retrying attempts that time out.
func (c *Client) Join(ctx context.Context, s entity.WaitlistSubmission) (*JoinResult, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("error encoding submission: %w", err)
	}

	attempts := 0
	result, err := retry.Do(ctx, c.policy, func(actx context.Context) (*JoinResult, error) {
		attempts++
		res, err := c.join(actx, body)
		if err != nil && ctx.Err() != nil {
			// the caller went away; not a timeout of this attempt
			return nil, ctx.Err()
		}
		return res, err
	})
	if err != nil {
		return nil, err
	}

	result.Attempts = attempts
	c.logger.Info("waitlist submission accepted",
		zap.Int("attempts", attempts),
		zap.Bool("server_referral_code", result.ReferralCode != ""),
	)
	return result, nil
}

func (c *Client) join(ctx context.Context, body []byte) (*JoinResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+joinPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return nil, classify(ctx, err)
		}
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, err)
	}

	var parsed joinResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing waitlist response: %w", err)
	}
	if !parsed.Success {
		msg := parsed.Message
		if msg == "" {
			msg = "submission was not accepted"
		}
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: msg}
	}

	result := &JoinResult{Message: parsed.Message}
	if parsed.Data != nil {
		result.ReferralCode = strings.TrimSpace(parsed.Data.ReferralCode)
	}
	return result, nil
}

// errorMessage prefers the JSON message the backend sent, then the raw text.
func errorMessage(status int, raw []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(status)
}

// Ping sends HEAD /api/health. It wakes a sleeping backend; callers are
// expected to ignore the error.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// ReferralCount asks how many leads joined through code, giving up after
// ReferralCountTimeout.
func (c *Client) ReferralCount(ctx context.Context, code string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.referralTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+referralsPath+url.PathEscape(code), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, &ServerError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}

	var parsed referralResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("error parsing referral response: %w", err)
	}
	return parsed.Data.Referrals, nil
}
