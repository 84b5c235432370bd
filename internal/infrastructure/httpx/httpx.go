package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	infraconfig "assetquotes-service/internal/infrastructure/config"

	"github.com/cenkalti/backoff/v4"
)

// StatusError reports a non-200 upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// DecodeError reports a 200 response whose body is not valid JSON.
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return "decode response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

type Client struct {
	HTTP  *http.Client
	Token string
	// MaxRetries caps retries after the first attempt; zero relies on the
	// elapsed-time budget alone.
	MaxRetries uint64
}

// DoJSON performs req and decodes a 200 JSON body into out. Network errors
// and 5xx responses are retried with exponential backoff; other statuses and
// decode failures are permanent.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/json")
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}
	req = req.WithContext(ctx)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = infraconfig.DefaultRetryInitial
	exp.MaxInterval = infraconfig.DefaultRetryMax
	exp.MaxElapsedTime = infraconfig.DefaultRetryElapsed
	var b backoff.BackOff = exp
	if c.MaxRetries > 0 {
		b = backoff.WithMaxRetries(exp, c.MaxRetries)
	}

	op := func() error {
		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			serr := &StatusError{Code: resp.StatusCode, Body: string(body)}
			if resp.StatusCode >= 500 {
				return serr
			}
			return backoff.Permanent(serr)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(&DecodeError{Err: err})
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
