// Package wishlist implements the wishlist engine, the simpler sibling of the
// cart engine: a remote-only set of product ids with the same optimistic,
// unawaited mirror-write policy. There is no anonymous mode; signed-out
// sessions hold an empty set and Toggle is a no-op.
package wishlist

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	wishgw "velora/internal/gateway/wishlist"
	"velora/internal/identity"
)

const (
	fetchTimeout  = 10 * time.Second
	mirrorTimeout = 5 * time.Second
)

type Engine struct {
	gw     wishgw.Gateway
	logger *log.Logger
	unsub  func()
	wg     sync.WaitGroup

	mu      sync.Mutex
	userID  string
	ids     map[string]struct{}
	loading bool
}

func New(signal identity.Signal, gw wishgw.Gateway, logger *log.Logger) *Engine {
	e := &Engine{
		gw:     gw,
		logger: logger,
		ids:    make(map[string]struct{}),
	}
	e.unsub = signal.Subscribe(e.onIdentity)
	userID, ok := signal.Current()
	e.onIdentity(userID, ok)
	return e
}

func (e *Engine) Close() {
	if e.unsub != nil {
		e.unsub()
	}
	e.wg.Wait()
}

// Toggle optimistically flips membership for productID and mirrors a single
// insert or delete matching the new state. Ignored while anonymous.
// It reports the new membership.
func (e *Engine) Toggle(productID string) bool {
	e.mu.Lock()
	userID := e.userID
	if userID == "" {
		e.mu.Unlock()
		return false
	}
	_, member := e.ids[productID]
	if member {
		delete(e.ids, productID)
	} else {
		e.ids[productID] = struct{}{}
	}
	e.mu.Unlock()

	if member {
		e.mirror("delete "+productID, func(ctx context.Context) error {
			return e.gw.Delete(ctx, userID, productID)
		})
	} else {
		e.mirror("insert "+productID, func(ctx context.Context) error {
			return e.gw.Insert(ctx, userID, productID)
		})
	}
	return !member
}

func (e *Engine) IsMember(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.ids[productID]
	return ok
}

// ProductIDs returns the current membership, sorted for stable output.
func (e *Engine) ProductIDs() []string {
	e.mu.Lock()
	ids := make([]string, 0, len(e.ids))
	for id := range e.ids {
		ids = append(ids, id)
	}
	e.mu.Unlock()
	sort.Strings(ids)
	return ids
}

func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// onIdentity refetches the full set on sign-in and clears it on sign-out.
func (e *Engine) onIdentity(userID string, authenticated bool) {
	if !authenticated {
		e.mu.Lock()
		e.userID = ""
		e.ids = make(map[string]struct{})
		e.loading = false
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	e.userID = userID
	e.loading = true
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	ids, err := e.gw.ListProductIDs(ctx, userID)
	if err != nil {
		e.logger.Printf("wishlist: fetch for %s: %v", userID, err)
		ids = nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	e.mu.Lock()
	e.ids = set
	e.loading = false
	e.mu.Unlock()
}

func (e *Engine) mirror(desc string, call func(ctx context.Context) error) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := call(ctx); err != nil {
			e.logger.Printf("wishlist: mirror %s: %v", desc, err)
		}
	}()
}
