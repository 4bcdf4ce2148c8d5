package httpserver

import (
	"log"
	"sync"
	"time"

	cartengine "velora/internal/engine/cart"
	wishengine "velora/internal/engine/wishlist"
	cartgw "velora/internal/gateway/cart"
	wishgw "velora/internal/gateway/wishlist"
	"velora/internal/identity"
	"velora/internal/localstore"
)

// clientSession is the server-side stand-in for one storefront client: its
// identity signal and the engines subscribed to it. The device-local snapshot
// is keyed by the session's device ID, so an anonymous cart survives sign-in
// and sign-out within the same session.
type clientSession struct {
	Identity *identity.Session
	Cart     *cartengine.Engine
	Wishlist *wishengine.Engine
}

// SessionRegistry issues session tokens and builds the per-session engines
// lazily on first use.
type SessionRegistry struct {
	tokens      *identity.TokenManager
	cartGW      cartgw.Gateway
	wishGW      wishgw.Gateway
	snapshotDir string
	logger      *log.Logger

	mu       sync.Mutex
	sessions map[string]*clientSession
}

func NewSessionRegistry(cartGW cartgw.Gateway, wishGW wishgw.Gateway, snapshotDir string, sessionTTL time.Duration, logger *log.Logger) *SessionRegistry {
	return &SessionRegistry{
		tokens:      identity.NewTokenManager(sessionTTL),
		cartGW:      cartGW,
		wishGW:      wishGW,
		snapshotDir: snapshotDir,
		logger:      logger,
		sessions:    make(map[string]*clientSession),
	}
}

// Begin issues a fresh session token.
func (r *SessionRegistry) Begin() string {
	token, _ := r.tokens.Issue()
	return token
}

// Resolve maps a token to its session, constructing the engines on first use.
func (r *SessionRegistry) Resolve(token string) (*clientSession, bool) {
	deviceID, ok := r.tokens.Validate(token)
	if !ok {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[deviceID]; ok {
		return sess, true
	}

	signal := identity.NewSession()
	local := localstore.New(r.snapshotDir, deviceID, r.logger)
	sess := &clientSession{
		Identity: signal,
		Cart:     cartengine.New(signal, local, r.cartGW, r.logger),
		Wishlist: wishengine.New(signal, r.wishGW, r.logger),
	}
	r.sessions[deviceID] = sess
	return sess, true
}

// Close shuts down every session's engines.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sess := range r.sessions {
		sess.Cart.Close()
		sess.Wishlist.Close()
	}
}
