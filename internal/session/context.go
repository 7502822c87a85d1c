// Package session owns the bounded conversation window for one agent
// session: a pinned core segment that is never evicted plus a dynamic,
// token-budgeted segment with strict FIFO eviction.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/roelfdiedericks/agentloop/internal/logging"
	"github.com/roelfdiedericks/agentloop/internal/tokens"
	"github.com/roelfdiedericks/agentloop/internal/types"
)

// Entry is one stored message with its budgeting metadata. Tokens is the
// counter's result at insertion time and is never recomputed - content is
// treated as immutable once stored.
type Entry struct {
	ID        string        `json:"id"`
	Content   types.Message `json:"content"`
	Tokens    int           `json:"tokens"`
	CreatedAt time.Time     `json:"createdAt"`
	Core      bool          `json:"core"`
}

// TokenStats reports the current budget usage. AvailableTokens can go
// negative after inserting a single message that alone exceeds the
// remaining budget (oversized-message condition).
type TokenStats struct {
	CoreTokens      int `json:"coreTokens"`
	DynamicTokens   int `json:"dynamicTokens"`
	TotalTokens     int `json:"totalTokens"`
	AvailableTokens int `json:"availableTokens"`
}

// Context is the conversation window for one session. Mutations are
// serialized by the mutex; reads run concurrently with each other but
// never against a mutation, so callers cannot observe a torn state
// between the entry lists and the running totals.
type Context struct {
	mu sync.RWMutex

	maxTokens int
	counter   tokens.Counter

	core          []Entry
	dynamic       []Entry
	coreTokens    int
	dynamicTokens int
}

// NewContext creates a context window with the given budget ceiling.
// coreMessages, if any, are pinned in order before the first turn.
// The counter defaults to the global estimator when nil.
func NewContext(maxTokens int, counter tokens.Counter, coreMessages ...types.Message) (*Context, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("session: max tokens must be positive, got %d", maxTokens)
	}
	if counter == nil {
		counter = tokens.Get()
	}

	c := &Context{
		maxTokens: maxTokens,
		counter:   counter,
	}
	for _, msg := range coreMessages {
		c.AddCore(msg)
	}

	L_debug("session: context created", "maxTokens", maxTokens, "coreMessages", len(coreMessages))
	return c, nil
}

// AddCore pins a message into the core segment. Core entries are exempt
// from eviction and precede all dynamic entries in every snapshot.
// No eviction happens here: pushing the core total past the budget is a
// caller misconfiguration, surfaced by Validate rather than corrected.
func (c *Context) AddCore(msg types.Message) Entry {
	t := tokens.CountMessage(c.counter, msg)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		ID:        uuid.NewString(),
		Content:   msg,
		Tokens:    t,
		CreatedAt: time.Now(),
		Core:      true,
	}
	c.core = append(c.core, entry)
	c.coreTokens += t

	if c.coreTokens > c.maxTokens {
		L_warn("session: core context exceeds budget", "coreTokens", c.coreTokens, "maxTokens", c.maxTokens)
	}
	return entry
}

// Validate reports a budget-configuration error when the pinned core
// context alone exceeds the budget ceiling. Intended for setup time,
// after the initial core set has been added.
func (c *Context) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.coreTokens > c.maxTokens {
		return fmt.Errorf("session: core context (%d tokens) exceeds budget of %d tokens", c.coreTokens, c.maxTokens)
	}
	return nil
}

// AddDynamic appends a message to the dynamic segment, evicting the
// oldest dynamic entries (strict FIFO) until the new message fits the
// budget left over by the core segment. The new entry is appended even
// when it alone exceeds that budget - an oversized message is never
// dropped or truncated; the condition surfaces as negative
// AvailableTokens in Stats. Returns the evicted entries oldest-first so
// the caller can persist or discard them.
func (c *Context) AddDynamic(msg types.Message) []Entry {
	t := tokens.CountMessage(c.counter, msg)

	c.mu.Lock()
	defer c.mu.Unlock()

	available := c.maxTokens - c.coreTokens

	var evicted []Entry
	for c.dynamicTokens+t > available && len(c.dynamic) > 0 {
		oldest := c.dynamic[0]
		c.dynamic = c.dynamic[1:]
		c.dynamicTokens -= oldest.Tokens
		evicted = append(evicted, oldest)
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Content:   msg,
		Tokens:    t,
		CreatedAt: time.Now(),
	}
	c.dynamic = append(c.dynamic, entry)
	c.dynamicTokens += t

	if len(evicted) > 0 {
		L_debug("session: evicted dynamic entries",
			"count", len(evicted),
			"newEntryTokens", t,
			"dynamicTokens", c.dynamicTokens,
			"available", available)
	}
	if c.dynamicTokens > available {
		L_warn("session: dynamic message exceeds available budget",
			"tokens", t, "available", available)
	}

	return evicted
}

// ClearDynamic removes and returns all dynamic entries oldest-first,
// leaving the core segment untouched.
func (c *Context) ClearDynamic() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.dynamic
	c.dynamic = nil
	c.dynamicTokens = 0

	L_debug("session: cleared dynamic context", "removed", len(removed))
	return removed
}

// Snapshot returns the canonical message list to send to a provider:
// every core entry's content followed by every dynamic entry's content,
// both in insertion order. Callers rely on core instructions always
// preceding conversational turns.
func (c *Context) Snapshot() []types.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	msgs := make([]types.Message, 0, len(c.core)+len(c.dynamic))
	for _, e := range c.core {
		msgs = append(msgs, e.Content)
	}
	for _, e := range c.dynamic {
		msgs = append(msgs, e.Content)
	}
	return msgs
}

// Stats returns the running token totals. O(1): the totals are
// maintained transactionally on every insert and evict.
func (c *Context) Stats() TokenStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.coreTokens + c.dynamicTokens
	return TokenStats{
		CoreTokens:      c.coreTokens,
		DynamicTokens:   c.dynamicTokens,
		TotalTokens:     total,
		AvailableTokens: c.maxTokens - total,
	}
}

// MaxTokens returns the configured budget ceiling
func (c *Context) MaxTokens() int {
	return c.maxTokens
}

// Len returns the number of stored entries (core + dynamic)
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.core) + len(c.dynamic)
}
