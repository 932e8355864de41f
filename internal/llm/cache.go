package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheableTasks are the tasks whose answers depend only on their prompt
// and are safe to replay.
var CacheableTasks = []TaskType{TaskArchetype, TaskInterview}

// CachingClient memoises successful responses of selected tasks.
type CachingClient struct {
	next     LLMClient
	cache    *lru.Cache[string, GenerateResponse]
	tasks    map[TaskType]bool
	observer Observer
}

// NewCachingClient wraps next with an LRU of size entries for tasks.
func NewCachingClient(next LLMClient, size int, observer Observer, tasks ...TaskType) (*CachingClient, error) {
	cache, err := lru.New[string, GenerateResponse](size)
	if err != nil {
		return nil, fmt.Errorf("creating llm cache: %w", err)
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	set := make(map[TaskType]bool, len(tasks))
	for _, t := range tasks {
		set[t] = true
	}
	return &CachingClient{next: next, cache: cache, tasks: set, observer: observer}, nil
}

func (c *CachingClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if !c.tasks[req.Task] {
		return c.next.Generate(ctx, req)
	}
	key := cacheKey(req)
	if hit, ok := c.cache.Get(key); ok {
		c.observer.OnCallComplete(LLMCallEvent{
			Task:    req.Task,
			Model:   hit.Model,
			Success: true,
			Cached:  true,
		})
		hit.LatencyMs = 0
		hit.Attempts = 0
		return &hit, nil
	}
	resp, err := c.next.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, *resp)
	return resp, nil
}

func (c *CachingClient) Available(ctx context.Context) bool {
	return c.next.Available(ctx)
}

// Len returns the number of cached responses.
func (c *CachingClient) Len() int { return c.cache.Len() }

func cacheKey(req GenerateRequest) string {
	var b strings.Builder
	b.WriteString(string(req.Task))
	b.WriteByte(0)
	b.WriteString(req.SystemPrompt)
	b.WriteByte(0)
	b.WriteString(req.UserPrompt)
	if req.Temperature != nil {
		fmt.Fprintf(&b, "\x00t=%g", *req.Temperature)
	}
	if req.MaxTokens != nil {
		fmt.Fprintf(&b, "\x00m=%d", *req.MaxTokens)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
