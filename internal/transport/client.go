// Package transport implements the authenticated JSON request/response
// protocol: a single bearer token, a uniform {status,message,code,
// data} envelope, and a retry/backoff policy that lives here rather than
// being sprinkled across callers. Chunk PUT/GET live in chunks.go.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// envelope is the generic wire shape of every JSON API response.
type envelope struct {
	Status  bool            `json:"status"`
	Message *string         `json:"message"`
	Code    *string         `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// Client is the single chokepoint for authenticated JSON requests and
// unauthenticated/authenticated chunk traffic.
type Client struct {
	HTTP       *http.Client
	APIBase    string
	IngestBase string
	EgestBase  string
	APIKey     string // bearer token; empty before login
	Retries    int
	Log        logrus.FieldLogger
}

// New builds a Client. apiKey may be empty for the unauthenticated
// auth/info and login calls.
func New(apiBase, ingestBase, egestBase, apiKey string, retries int, timeout time.Duration, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		APIBase:    apiBase,
		IngestBase: ingestBase,
		EgestBase:  egestBase,
		APIKey:     apiKey,
		Retries:    retries,
		Log:        log,
	}
}

// PostJSON sends body (marshaled to JSON) to apiBase+path with the bearer
// token attached, applying the retry policy, and unmarshals the
// envelope's data field into out (which may be nil to discard it).
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	var env envelope
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.APIKey)
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			c.Log.WithError(err).Warn("transport: network failure, retrying")
			return err // network-level: retryable
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return backoff.Permanent(ErrUnauthorized)
		case resp.StatusCode >= 500:
			c.Log.WithField("status", resp.StatusCode).Warn("transport: server error, retrying")
			return fmt.Errorf("transport: http %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			var e envelope
			_ = json.Unmarshal(raw, &e)
			code := ""
			if e.Code != nil {
				code = *e.Code
			}
			msg := ""
			if e.Message != nil {
				msg = *e.Message
			}
			if isAuthChallengeCode(code) {
				return backoff.Permanent(&AuthChallengeError{Code: code})
			}
			return backoff.Permanent(&HTTPStatusError{StatusCode: resp.StatusCode, Code: code, Message: msg})
		}

		if err := json.Unmarshal(raw, &env); err != nil {
			return backoff.Permanent(fmt.Errorf("transport: malformed response: %w", err))
		}
		if !env.Status {
			code := ""
			if env.Code != nil {
				code = *env.Code
			}
			msg := ""
			if env.Message != nil {
				msg = *env.Message
			}
			if isAuthChallengeCode(code) {
				return backoff.Permanent(&AuthChallengeError{Code: code})
			}
			return backoff.Permanent(&ErrDomainFailure{Code: code, Message: msg})
		}
		return nil
	}

	if err := backoff.Retry(op, c.retryPolicy()); err != nil {
		return err
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// retryPolicy implements a fixed 1s/2s/4s schedule, capped at Retries
// attempts (default 3).
func (c *Client) retryPolicy() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	return backoff.WithMaxRetries(eb, uint64(c.Retries))
}
