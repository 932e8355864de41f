// Package llmtest provides a scripted LLMClient for tests of code that
// consumes suggestions.
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/alexanderramin/mandalart/internal/llm"
)

type reply struct {
	text string
	err  error
}

// Client answers each task from a queue of scripted replies. The last
// reply of a task repeats once the queue is drained. Tasks without a
// script fail with llm.ErrUnavailable.
type Client struct {
	mu       sync.Mutex
	replies  map[llm.TaskType][]reply
	hooks    map[llm.TaskType]func(context.Context)
	requests []llm.GenerateRequest
}

// New returns a Client with no scripted replies.
func New() *Client {
	return &Client{
		replies: make(map[llm.TaskType][]reply),
		hooks:   make(map[llm.TaskType]func(context.Context)),
	}
}

// OnCall runs fn at the start of every call for task, before the reply is
// chosen. It lets a test change the world while a caller waits on the LLM.
func (c *Client) OnCall(task llm.TaskType, fn func(ctx context.Context)) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks[task] = fn
	return c
}

// On queues a raw text reply for task.
func (c *Client) On(task llm.TaskType, text string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[task] = append(c.replies[task], reply{text: text})
	return c
}

// OnJSON queues v, encoded as JSON, as a reply for task.
func (c *Client) OnJSON(task llm.TaskType, v any) *Client {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("llmtest: encoding reply for %s: %v", task, err))
	}
	return c.On(task, string(data))
}

// Fail queues err as a reply for task.
func (c *Client) Fail(task llm.TaskType, err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[task] = append(c.replies[task], reply{err: err})
	return c
}

func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	hook := c.hooks[req.Task]
	c.mu.Unlock()
	if hook != nil {
		hook(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	queue := c.replies[req.Task]
	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: no reply scripted for %s", llm.ErrUnavailable, req.Task)
	}
	r := queue[0]
	if len(queue) > 1 {
		c.replies[req.Task] = queue[1:]
	}
	if r.err != nil {
		return nil, r.err
	}
	return &llm.GenerateResponse{Text: r.text, Model: "llmtest", Attempts: 1}, nil
}

func (c *Client) Available(context.Context) bool { return true }

// Requests returns the requests received so far.
func (c *Client) Requests() []llm.GenerateRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.GenerateRequest(nil), c.requests...)
}

// Calls counts the requests received for task.
func (c *Client) Calls(task llm.TaskType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.requests {
		if r.Task == task {
			n++
		}
	}
	return n
}
