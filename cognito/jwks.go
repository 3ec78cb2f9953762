package cognito

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/toshokan/gateway/internal/observability"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrKeyNotFound is returned when no key in the published set matches the kid
	ErrKeyNotFound = errors.New("signing key not found")

	// ErrJWKSFetchFailed is returned when the JWKS document cannot be fetched or parsed
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")
)

const maxJWKSBodyBytes = 1 << 20

// SigningKey is one public key published by the user pool.
type SigningKey struct {
	KeyID     string
	Algorithm string
	PublicKey *rsa.PublicKey
}

// KeyResolverConfig holds configuration for KeyResolver
type KeyResolverConfig struct {
	JWKSURL  string
	CacheTTL time.Duration
	// MinRefreshInterval is the minimum age of the cached set before an
	// unknown kid may trigger another upstream fetch.
	MinRefreshInterval time.Duration
	HTTPTimeout        time.Duration
	HTTPClient         *http.Client
}

// ResolverStats describes the current key cache.
type ResolverStats struct {
	CachedKeys int
	FetchedAt  time.Time
	ExpiresAt  time.Time
}

type keySnapshot struct {
	keys      map[string]*SigningKey
	fetchedAt time.Time
	expiresAt time.Time
}

// KeyResolver resolves kids to public keys from the user pool's JWKS endpoint.
// The cached key set is replaced atomically as a whole; readers never lock.
type KeyResolver struct {
	jwksURL    string
	ttl        time.Duration
	minRefresh time.Duration
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.GatewayMetrics

	snapshot atomic.Pointer[keySnapshot]
	group    singleflight.Group
	now      func() time.Time
}

// NewKeyResolver creates a KeyResolver. Nothing is fetched until the first Resolve.
func NewKeyResolver(cfg KeyResolverConfig, logger *zap.Logger, metrics *observability.GatewayMetrics) *KeyResolver {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.MinRefreshInterval < 0 {
		cfg.MinRefreshInterval = 0
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &KeyResolver{
		jwksURL:    cfg.JWKSURL,
		ttl:        cfg.CacheTTL,
		minRefresh: cfg.MinRefreshInterval,
		timeout:    cfg.HTTPTimeout,
		httpClient: cfg.HTTPClient,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Resolve returns the key for kid, fetching the key set when the cache is
// empty, expired, or does not know the kid. Concurrent misses for the same
// kid share one upstream fetch. Fetch failures are returned and not cached.
func (r *KeyResolver) Resolve(ctx context.Context, kid string) (*SigningKey, error) {
	if kid == "" {
		return nil, ErrKeyNotFound
	}

	if snap := r.snapshot.Load(); snap != nil && r.now().Before(snap.expiresAt) {
		if key, ok := snap.keys[kid]; ok {
			return key, nil
		}
		if r.now().Sub(snap.fetchedAt) < r.minRefresh {
			return nil, fmt.Errorf("%w: kid %s", ErrKeyNotFound, kid)
		}
	}

	ch := r.group.DoChan(kid, func() (interface{}, error) {
		return r.refresh(ctx, kid)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		snap := res.Val.(*keySnapshot)
		if key, ok := snap.keys[kid]; ok {
			return key, nil
		}
		return nil, fmt.Errorf("%w: kid %s", ErrKeyNotFound, kid)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// refresh runs inside the single flight for kid. It reuses a set that another
// flight installed meanwhile if that set already knows the kid.
func (r *KeyResolver) refresh(ctx context.Context, kid string) (*keySnapshot, error) {
	if snap := r.snapshot.Load(); snap != nil && r.now().Before(snap.expiresAt) {
		if _, ok := snap.keys[kid]; ok {
			return snap, nil
		}
	}

	// The fetch outlives any single waiter; it is bounded by its own timeout.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	keys, err := r.fetchKeys(fetchCtx)
	r.metrics.RecordJWKSFetch(err == nil)
	if err != nil {
		r.logger.Warn("JWKS fetch failed", zap.String("kid", kid), zap.Error(err))
		return nil, err
	}

	now := r.now()
	snap := &keySnapshot{
		keys:      keys,
		fetchedAt: now,
		expiresAt: now.Add(r.ttl),
	}
	r.snapshot.Store(snap)

	r.logger.Debug("JWKS refreshed", zap.Int("keys", len(keys)), zap.String("kid", kid))
	return snap, nil
}

func (r *KeyResolver) fetchKeys(ctx context.Context) (map[string]*SigningKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrJWKSFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrJWKSFetchFailed, err)
	}

	keys := make(map[string]*SigningKey, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if !ok {
			continue
		}
		kid, ok := key.KeyID()
		if !ok || kid == "" {
			continue
		}

		var raw interface{}
		if err := jwk.Export(key, &raw); err != nil {
			r.logger.Warn("skipping unexportable JWK", zap.String("kid", kid), zap.Error(err))
			continue
		}

		var pub *rsa.PublicKey
		switch k := raw.(type) {
		case *rsa.PublicKey:
			pub = k
		case rsa.PublicKey:
			pub = &k
		default:
			continue
		}

		alg := "RS256"
		if a, ok := key.Algorithm(); ok && a.String() != "" {
			alg = a.String()
		}
		keys[kid] = &SigningKey{KeyID: kid, Algorithm: alg, PublicKey: pub}
	}

	return keys, nil
}

// Stats returns cache statistics
func (r *KeyResolver) Stats() ResolverStats {
	snap := r.snapshot.Load()
	if snap == nil {
		return ResolverStats{}
	}
	return ResolverStats{
		CachedKeys: len(snap.keys),
		FetchedAt:  snap.fetchedAt,
		ExpiresAt:  snap.expiresAt,
	}
}
