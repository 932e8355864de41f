package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// attemptFunc performs one provider round trip and returns the raw text
// and the model that produced it.
type attemptFunc func(ctx context.Context, p callParams) (text, model string, err error)

// caller runs attempts with linear backoff and reports one event per call.
type caller struct {
	provider Provider
	cfg      LLMConfig
	observer Observer
	sleep    func(ctx context.Context, d time.Duration) bool
}

func newCaller(provider Provider, cfg LLMConfig, observer Observer) caller {
	if observer == nil {
		observer = NoopObserver{}
	}
	return caller{provider: provider, cfg: cfg, observer: observer, sleep: sleepCtx}
}

func (c caller) call(ctx context.Context, req GenerateRequest, attempt attemptFunc) (*GenerateResponse, error) {
	start := time.Now()
	p := resolveParams(c.cfg, req)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	attempts := 1 + max(c.cfg.MaxRetries, 0)
	var lastErr error
	n := 0
	for i := 0; i < attempts; i++ {
		n = i + 1
		text, model, err := attempt(ctx, p)
		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("%w: empty response", ErrInvalidOutput)
		}
		if err == nil {
			latency := time.Since(start).Milliseconds()
			if model == "" {
				model = c.cfg.Model
			}
			c.observer.OnCallComplete(LLMCallEvent{
				Task:      req.Task,
				Provider:  c.provider,
				Model:     model,
				LatencyMs: latency,
				Attempts:  n,
				Success:   true,
			})
			return &GenerateResponse{Text: text, Model: model, LatencyMs: latency, Attempts: n}, nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil {
			break
		}
		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			break
		}
		if i < attempts-1 {
			backoff := time.Duration(c.cfg.BackoffMs*(i+1)) * time.Millisecond
			if !c.sleep(ctx, backoff) {
				break
			}
		}
	}

	err := c.classify(ctx, lastErr, n == attempts)
	c.observer.OnCallComplete(LLMCallEvent{
		Task:      req.Task,
		Provider:  c.provider,
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  n,
		Success:   false,
		ErrorCode: errorCode(err),
	})
	return nil, err
}

func (c caller) classify(ctx context.Context, lastErr error, exhausted bool) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.Canceled) {
			return fmt.Errorf("%s call canceled: %w", c.provider, ctxErr)
		}
		return ErrTimeout
	}
	if isConnectionError(lastErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}
	if !exhausted {
		return fmt.Errorf("%s call failed: %w", c.provider, lastErr)
	}
	if errors.Is(lastErr, ErrInvalidOutput) {
		return fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
	}
	return fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
