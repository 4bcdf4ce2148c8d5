// Package cart implements the cart reconciliation engine. It owns the
// authoritative in-memory cart for one session, sources it from device-local
// storage while anonymous and from the remote cart store once signed in, and
// mirrors every mutation to whichever store is current.
//
// Intents are synchronous: in-memory state and derived aggregates are updated
// before the call returns. Remote mirror writes run on their own goroutines
// and are never awaited, ordered, or rolled back; a failed mirror leaves the
// optimistic in-memory state in place and is only logged. Transient divergence
// between memory and the remote store is accepted in exchange for a UI that
// never blocks on the network.
package cart

import (
	"context"
	"log"
	"sync"
	"time"

	"velora/internal/domain"
	cartgw "velora/internal/gateway/cart"
	"velora/internal/identity"
)

const (
	fetchTimeout  = 10 * time.Second
	mirrorTimeout = 5 * time.Second
)

// LocalStore is the device-scoped snapshot used in anonymous mode.
type LocalStore interface {
	Load() []domain.CartLine
	Save(lines []domain.CartLine)
}

type Engine struct {
	gw     cartgw.Gateway
	local  LocalStore
	logger *log.Logger
	unsub  func()
	wg     sync.WaitGroup

	mu      sync.Mutex
	mode    domain.OwnerMode
	cartID  string
	lines   []domain.CartLine
	syncing bool
}

// New builds an engine bound to the session's identity signal and applies the
// signal's current value before returning, so the first Snapshot already
// reflects the right source.
func New(signal identity.Signal, local LocalStore, gw cartgw.Gateway, logger *log.Logger) *Engine {
	e := &Engine{
		gw:     gw,
		local:  local,
		logger: logger,
		mode:   domain.OwnerAnonymous,
	}
	e.unsub = signal.Subscribe(e.onIdentity)
	userID, ok := signal.Current()
	e.onIdentity(userID, ok)
	return e
}

// Close unsubscribes from the identity signal and waits for in-flight mirror
// writes to finish.
func (e *Engine) Close() {
	if e.unsub != nil {
		e.unsub()
	}
	e.wg.Wait()
}

// Snapshot returns a copy of the current cart with Count and Total computed
// fresh from the lines.
func (e *Engine) Snapshot() domain.CartState {
	e.mu.Lock()
	defer e.mu.Unlock()
	lines := make([]domain.CartLine, len(e.lines))
	copy(lines, e.lines)
	return domain.CartState{
		Lines:        lines,
		Mode:         e.mode,
		RemoteCartID: e.cartID,
		Count:        domain.CountLines(lines),
		Total:        domain.TotalLines(lines),
		Syncing:      e.syncing,
	}
}

// AddLine increments the line for p by one, inserting a quantity-1 line at the
// end of the collection on first add. At most one line exists per product.
func (e *Engine) AddLine(p domain.Product) {
	e.mu.Lock()
	qty := 1
	if i := e.indexOf(p.ID); i >= 0 {
		e.lines[i].Quantity++
		qty = e.lines[i].Quantity
	} else {
		e.lines = append(e.lines, domain.LineFromProduct(p))
	}
	e.persistLocalLocked()
	cartID, authed := e.cartID, e.mode == domain.OwnerAuthenticated
	e.mu.Unlock()

	if authed && cartID != "" {
		e.mirror("upsert "+p.ID, func(ctx context.Context) error {
			return e.gw.UpsertItem(ctx, cartID, p.ID, qty)
		})
	}
}

// RemoveLine deletes the line for productID; a no-op if absent.
func (e *Engine) RemoveLine(productID string) {
	e.mu.Lock()
	if i := e.indexOf(productID); i >= 0 {
		e.lines = append(e.lines[:i], e.lines[i+1:]...)
	}
	e.persistLocalLocked()
	cartID, authed := e.cartID, e.mode == domain.OwnerAuthenticated
	e.mu.Unlock()

	if authed && cartID != "" {
		e.mirror("delete "+productID, func(ctx context.Context) error {
			return e.gw.DeleteItem(ctx, cartID, productID)
		})
	}
}

// SetQuantity replaces the line's quantity. Quantities below one remove the
// line instead; a zero-quantity line never exists.
func (e *Engine) SetQuantity(productID string, quantity int) {
	if quantity < 1 {
		e.RemoveLine(productID)
		return
	}

	e.mu.Lock()
	i := e.indexOf(productID)
	if i < 0 {
		e.mu.Unlock()
		return
	}
	e.lines[i].Quantity = quantity
	e.persistLocalLocked()
	cartID, authed := e.cartID, e.mode == domain.OwnerAuthenticated
	e.mu.Unlock()

	if authed && cartID != "" {
		e.mirror("update "+productID, func(ctx context.Context) error {
			return e.gw.UpsertItem(ctx, cartID, productID, quantity)
		})
	}
}

// Clear empties the cart.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.lines = nil
	e.persistLocalLocked()
	cartID, authed := e.cartID, e.mode == domain.OwnerAuthenticated
	e.mu.Unlock()

	if authed && cartID != "" {
		e.mirror("clear", func(ctx context.Context) error {
			return e.gw.DeleteAllItems(ctx, cartID)
		})
	}
}

// onIdentity is the mode-transition protocol. Sign-in materializes the remote
// cart and replaces the visible lines wholesale; any anonymous lines are
// dropped from view, not merged. Sign-out reloads the device snapshot.
func (e *Engine) onIdentity(userID string, authenticated bool) {
	if !authenticated {
		lines := e.local.Load()
		e.mu.Lock()
		e.mode = domain.OwnerAnonymous
		e.cartID = ""
		e.syncing = false
		e.lines = lines
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	e.mode = domain.OwnerAuthenticated
	e.cartID = ""
	e.syncing = true
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	cartID, err := e.gw.FindOrCreateCart(ctx, userID)
	if err != nil {
		e.logger.Printf("cart: materialize remote cart for %s: %v", userID, err)
		e.installRemote("", nil)
		return
	}
	lines, err := e.gw.ListItems(ctx, cartID)
	if err != nil {
		e.logger.Printf("cart: fetch items for cart %s: %v", cartID, err)
		lines = nil
	}
	e.installRemote(cartID, lines)
}

func (e *Engine) installRemote(cartID string, lines []domain.CartLine) {
	e.mu.Lock()
	e.cartID = cartID
	e.lines = lines
	e.syncing = false
	e.mu.Unlock()
}

// persistLocalLocked writes the full line collection through to the device
// snapshot. Only anonymous carts touch local storage; while authenticated the
// remote store is the durable copy.
func (e *Engine) persistLocalLocked() {
	if e.mode != domain.OwnerAnonymous {
		return
	}
	lines := make([]domain.CartLine, len(e.lines))
	copy(lines, e.lines)
	e.local.Save(lines)
}

func (e *Engine) indexOf(productID string) int {
	for i, l := range e.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// mirror runs a remote write without blocking the caller. Failures are logged
// and the in-memory state is kept as the optimistic truth.
func (e *Engine) mirror(desc string, call func(ctx context.Context) error) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := call(ctx); err != nil {
			e.logger.Printf("cart: mirror %s: %v", desc, err)
		}
	}()
}
