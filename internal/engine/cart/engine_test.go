package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora/internal/domain"
	"velora/internal/identity"
)

type upsertCall struct {
	CartID    string
	ProductID string
	Quantity  int
}

// stubGateway models the remote store: item rows keyed by (cart, product),
// with recorded calls and injectable failures.
type stubGateway struct {
	mu        sync.Mutex
	cartID    string
	remote    []domain.CartLine
	findErr   error
	listErr   error
	upsertErr error
	deleteErr error
	findCalls int
	upserts   []upsertCall
	deletes   []string
	clears    int
	rows      map[string]int
}

func newStubGateway(cartID string, remote ...domain.CartLine) *stubGateway {
	g := &stubGateway{cartID: cartID, remote: remote, rows: map[string]int{}}
	for _, l := range remote {
		g.rows[l.ProductID] = l.Quantity
	}
	return g
}

func (g *stubGateway) FindOrCreateCart(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.findCalls++
	if g.findErr != nil {
		return "", g.findErr
	}
	return g.cartID, nil
}

func (g *stubGateway) ListItems(_ context.Context, _ string) ([]domain.CartLine, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	lines := make([]domain.CartLine, len(g.remote))
	copy(lines, g.remote)
	return lines, nil
}

func (g *stubGateway) UpsertItem(_ context.Context, cartID, productID string, quantity int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.upsertErr != nil {
		return g.upsertErr
	}
	g.upserts = append(g.upserts, upsertCall{CartID: cartID, ProductID: productID, Quantity: quantity})
	g.rows[productID] = quantity
	return nil
}

func (g *stubGateway) DeleteItem(_ context.Context, _, productID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deletes = append(g.deletes, productID)
	delete(g.rows, productID)
	return nil
}

func (g *stubGateway) DeleteAllItems(_ context.Context, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.clears++
	g.rows = map[string]int{}
	return nil
}

type memStore struct {
	lines []domain.CartLine
	saves int
}

func (s *memStore) Load() []domain.CartLine {
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	return lines
}

func (s *memStore) Save(lines []domain.CartLine) {
	s.lines = lines
	s.saves++
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func product(id, name, price string) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Currency: "USD",
		Images:   []string{"https://cdn.example.com/" + id + ".jpg"},
	}
}

func newTestEngine(t *testing.T, gw *stubGateway) (*Engine, *identity.Session, *memStore) {
	t.Helper()
	signal := identity.NewSession()
	store := &memStore{}
	e := New(signal, store, gw, testLogger())
	t.Cleanup(e.Close)
	return e, signal, store
}

func TestAddLineKeepsOneLinePerProduct(t *testing.T) {
	e, _, _ := newTestEngine(t, newStubGateway("c1"))

	for i := 0; i < 3; i++ {
		e.AddLine(product("p1", "Tee", "19.99"))
	}

	snap := e.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "p1", snap.Lines[0].ProductID)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
}

func TestAddLinePreservesInsertionOrder(t *testing.T) {
	e, _, _ := newTestEngine(t, newStubGateway("c1"))

	e.AddLine(product("p1", "Tee", "10.00"))
	e.AddLine(product("p2", "Mug", "5.00"))
	e.AddLine(product("p1", "Tee", "10.00"))

	snap := e.Snapshot()
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "p1", snap.Lines[0].ProductID)
	assert.Equal(t, "p2", snap.Lines[1].ProductID)
}

func TestSetQuantityBelowOneRemovesLine(t *testing.T) {
	for _, qty := range []int{0, -1} {
		e, _, _ := newTestEngine(t, newStubGateway("c1"))
		e.AddLine(product("p1", "Tee", "19.99"))

		e.SetQuantity("p1", qty)

		assert.Empty(t, e.Snapshot().Lines, "quantity %d should remove the line", qty)
	}
}

func TestSetQuantityUnknownProductIsNoOp(t *testing.T) {
	gw := newStubGateway("c1")
	e, signal, _ := newTestEngine(t, gw)
	signal.SignIn("u1")

	e.SetQuantity("ghost", 5)
	e.wg.Wait()

	assert.Empty(t, e.Snapshot().Lines)
	assert.Empty(t, gw.upserts)
}

func TestDerivedAggregates(t *testing.T) {
	e, _, _ := newTestEngine(t, newStubGateway("c1"))

	e.AddLine(product("a", "A", "10.00"))
	e.AddLine(product("a", "A", "10.00"))
	e.AddLine(product("b", "B", "5.00"))

	snap := e.Snapshot()
	assert.Equal(t, 3, snap.Count)
	assert.True(t, snap.Total.Equal(decimal.RequireFromString("25.00")), "total = %s", snap.Total)
}

func TestAnonymousMutationsWriteThrough(t *testing.T) {
	e, _, store := newTestEngine(t, newStubGateway("c1"))

	e.AddLine(product("p1", "Tee", "19.99"))
	e.SetQuantity("p1", 4)
	e.AddLine(product("p2", "Mug", "12.99"))
	e.RemoveLine("p2")

	require.Equal(t, 4, store.saves)
	snap := e.Snapshot()
	assert.Equal(t, snap.Lines, store.lines)
}

func TestSignInReplacesAnonymousCart(t *testing.T) {
	gw := newStubGateway("c1")
	e, signal, store := newTestEngine(t, gw)

	// Scenario: anonymous cart A,A,B then sign in with no prior remote cart.
	e.AddLine(product("a", "A", "10.00"))
	e.AddLine(product("a", "A", "10.00"))
	e.AddLine(product("b", "B", "5.00"))
	require.Equal(t, 3, e.Snapshot().Count)

	signal.SignIn("u1")

	snap := e.Snapshot()
	assert.Equal(t, domain.OwnerAuthenticated, snap.Mode)
	assert.Equal(t, "c1", snap.RemoteCartID)
	assert.Empty(t, snap.Lines, "remote cart contents replace anonymous lines, no merge")
	assert.False(t, snap.Syncing)
	// The device snapshot keeps the anonymous cart untouched.
	assert.Len(t, store.lines, 2)
}

func TestSignInLoadsRemoteCart(t *testing.T) {
	remote := domain.CartLine{ProductID: "r1", Name: "Remote", UnitPrice: decimal.RequireFromString("7.50"), Quantity: 2}
	e, signal, _ := newTestEngine(t, newStubGateway("c1", remote))

	signal.SignIn("u1")

	snap := e.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, remote, snap.Lines[0])
	assert.Equal(t, 2, snap.Count)
}

func TestSignOutReloadsLocalSnapshot(t *testing.T) {
	e, signal, _ := newTestEngine(t, newStubGateway("c1"))

	e.AddLine(product("p1", "Tee", "19.99"))
	signal.SignIn("u1")
	require.Empty(t, e.Snapshot().Lines)

	signal.SignOut()

	snap := e.Snapshot()
	assert.Equal(t, domain.OwnerAnonymous, snap.Mode)
	assert.Empty(t, snap.RemoteCartID)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "p1", snap.Lines[0].ProductID)
}

func TestUnchangedIdentityDoesNotReload(t *testing.T) {
	gw := newStubGateway("c1")
	_, signal, _ := newTestEngine(t, gw)

	signal.SignIn("u1")
	signal.SignIn("u1")

	assert.Equal(t, 1, gw.findCalls)
}

func TestAuthenticatedAddMirrorsIdempotentUpsert(t *testing.T) {
	gw := newStubGateway("c1")
	e, signal, _ := newTestEngine(t, gw)
	signal.SignIn("u1")

	p := product("p1", "Tee", "19.99")
	e.AddLine(p)
	e.wg.Wait()
	e.AddLine(p)
	e.wg.Wait()

	// Two adds converge on one remote row with quantity 2, not two rows.
	require.Equal(t, []upsertCall{
		{CartID: "c1", ProductID: "p1", Quantity: 1},
		{CartID: "c1", ProductID: "p1", Quantity: 2},
	}, gw.upserts)
	require.Len(t, gw.rows, 1)
	assert.Equal(t, 2, gw.rows["p1"])
}

func TestAuthenticatedRemoveMirrorsDelete(t *testing.T) {
	remote := domain.CartLine{ProductID: "a", Name: "A", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2}
	gw := newStubGateway("c1", remote)
	e, signal, _ := newTestEngine(t, gw)
	signal.SignIn("u1")

	e.RemoveLine("a")

	// In-memory removal is immediate, before the mirror completes.
	assert.Empty(t, e.Snapshot().Lines)
	e.wg.Wait()
	assert.Equal(t, []string{"a"}, gw.deletes)
}

func TestFailedDeleteMirrorDiverges(t *testing.T) {
	remote := domain.CartLine{ProductID: "a", Name: "A", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2}
	gw := newStubGateway("c1", remote)
	e, signal, _ := newTestEngine(t, gw)
	signal.SignIn("u1")

	gw.deleteErr = errors.New("gateway down")
	e.RemoveLine("a")
	e.wg.Wait()

	// No rollback: memory says gone even though the remote row survived.
	assert.Empty(t, e.Snapshot().Lines)

	// A reload makes the line reappear. Expected divergence, not a bug.
	gw.deleteErr = nil
	signal.SignOut()
	signal.SignIn("u1")
	snap := e.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "a", snap.Lines[0].ProductID)
}

func TestClearMirrorsBulkDelete(t *testing.T) {
	remote := domain.CartLine{ProductID: "a", Name: "A", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2}
	gw := newStubGateway("c1", remote)
	e, signal, _ := newTestEngine(t, gw)
	signal.SignIn("u1")

	e.Clear()
	e.wg.Wait()

	assert.Empty(t, e.Snapshot().Lines)
	assert.Equal(t, 1, gw.clears)
	assert.Empty(t, gw.rows)
}

func TestTransitionFetchFailureLeavesEmptyCart(t *testing.T) {
	gw := newStubGateway("c1")
	gw.findErr = errors.New("gateway down")
	e, signal, _ := newTestEngine(t, gw)

	e.AddLine(product("p1", "Tee", "19.99"))
	signal.SignIn("u1")

	snap := e.Snapshot()
	assert.Equal(t, domain.OwnerAuthenticated, snap.Mode)
	assert.Empty(t, snap.Lines)
	assert.Empty(t, snap.RemoteCartID)
	assert.False(t, snap.Syncing)
}

func TestMutationWithoutRemoteCartSkipsMirror(t *testing.T) {
	gw := newStubGateway("c1")
	gw.findErr = errors.New("gateway down")
	e, signal, _ := newTestEngine(t, gw)
	signal.SignIn("u1")

	// No resolvable cart id: the mutation applies in memory only.
	e.AddLine(product("p1", "Tee", "19.99"))
	e.wg.Wait()

	assert.Equal(t, 1, e.Snapshot().Count)
	assert.Empty(t, gw.upserts)
}

func TestFailedUpsertMirrorKeepsOptimisticState(t *testing.T) {
	gw := newStubGateway("c1")
	e, signal, _ := newTestEngine(t, gw)
	signal.SignIn("u1")

	gw.upsertErr = errors.New("gateway down")
	e.AddLine(product("p1", "Tee", "19.99"))
	e.wg.Wait()

	assert.Equal(t, 1, e.Snapshot().Count)
	assert.Empty(t, gw.rows)
}

func TestAuthenticatedMutationsSkipLocalStore(t *testing.T) {
	gw := newStubGateway("c1")
	e, signal, store := newTestEngine(t, gw)
	signal.SignIn("u1")

	e.AddLine(product("p1", "Tee", "19.99"))
	e.wg.Wait()

	assert.Zero(t, store.saves)
}
