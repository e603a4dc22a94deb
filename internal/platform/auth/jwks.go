package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultJWKSCacheTTL    = 5 * time.Minute
	minJWKSRefreshInterval = 30 * time.Second
)

type jwksKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSCache holds RSA keys fetched from a JWKS endpoint and refetches them
// on a miss or once the TTL has passed. Fetches, successful or not, are
// spaced at least minRefresh apart.
type JWKSCache struct {
	mu          sync.RWMutex
	refreshMu   sync.Mutex
	keys        map[string]*rsa.PublicKey
	url         string
	ttl         time.Duration
	minRefresh  time.Duration
	fetchedAt   time.Time
	attemptedAt time.Time
	client      *http.Client
}

func NewJWKSCache(url string, ttl time.Duration) *JWKSCache {
	return &JWKSCache{
		keys:       make(map[string]*rsa.PublicKey),
		url:        url,
		ttl:        ttl,
		minRefresh: minJWKSRefreshInterval,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// GetKey returns the public key with the given kid. A miss refetches the
// document at most once per minimum refresh interval.
func (c *JWKSCache) GetKey(kid string) (*rsa.PublicKey, error) {
	if key, ok, fetch := c.lookup(kid); !fetch {
		if !ok {
			return nil, fmt.Errorf("key with kid %q not found in JWKS", kid)
		}
		return key, nil
	}

	c.refreshMu.Lock()
	// Another caller may have refreshed while this one waited.
	if _, _, fetch := c.lookup(kid); fetch {
		if err := c.refresh(); err != nil {
			c.refreshMu.Unlock()
			return nil, fmt.Errorf("fetching JWKS: %w", err)
		}
	}
	c.refreshMu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("key with kid %q not found in JWKS", kid)
	}
	return key, nil
}

// lookup reports the cached key for kid and whether the document should be
// fetched again before answering.
func (c *JWKSCache) lookup(kid string) (*rsa.PublicKey, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[kid]
	throttled := time.Since(c.attemptedAt) < c.minRefresh
	switch {
	case c.attemptedAt.IsZero():
		return nil, false, true
	case ok && time.Since(c.fetchedAt) <= c.ttl:
		return key, true, false
	case ok:
		// Serve a stale key rather than refetch too often.
		return key, true, !throttled
	default:
		return nil, false, !throttled
	}
}

func (c *JWKSCache) refresh() error {
	c.mu.Lock()
	c.attemptedAt = time.Now()
	c.mu.Unlock()

	resp, err := c.client.Get(c.url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []jwksKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decoding JWKS response: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return nil
}

func (k jwksKey) publicKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}

// jwksKeyFunc resolves the token's kid against a cached JWKS document.
func jwksKeyFunc(url string) jwt.Keyfunc {
	cache := NewJWKSCache(url, defaultJWKSCacheTTL)
	return func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("token has no kid header")
		}
		return cache.GetKey(kid)
	}
}
