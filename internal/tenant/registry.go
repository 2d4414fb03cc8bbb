// Package tenant resolves an inbound request's (provider,
// provider_account_id) to a tenant. It caches active channel bindings
// with a TTL refresh and fails closed on any credential-context
// mismatch without revealing which tenant or provider was involved.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caravanleads/caravan/internal/apperror"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

// ErrCryptoContextMismatch is returned (wrapped in an apperror of Kind
// KindConfigCrypto) when a binding's context tag does not match the
// expected tenant:provider pair at decrypt time. A tag mismatch fails
// closed without revealing which component mismatched.
var ErrCryptoContextMismatch = errors.New("tenant: credential context mismatch")

// CredentialDecryptor decrypts a ChannelBinding's opaque CredentialBlob.
// Actual encryption/decryption is an external collaborator (see
// domain.ChannelBinding's doc comment) — this project supplies only the
// contract and the fail-closed wiring around it.
type CredentialDecryptor interface {
	Decrypt(blob []byte, contextTag string) ([]byte, error)
}

// TenantContext is the resolved result of a provider lookup: the
// tenant's identity plus its decrypted channel credentials for this one
// call. Credentials are never cached in decrypted form — the registry
// caches the binding (ciphertext + tag) and decrypts per use.
type TenantContext struct {
	TenantID    string
	IsActive    bool
	Provider    domain.Provider
	Credentials []byte
}

// cacheEntry is one cached channel binding plus its TTL deadline.
type cacheEntry struct {
	binding   domain.ChannelBinding
	expiresAt time.Time
}

// Registry resolves (provider, provider_account_id) to a TenantContext
// in amortized constant time via a TTL-refreshed cache, grounded on
// vanducng-goclaw's channel-instance TTL-cache idiom
// (internal/channels/instance_loader.go) and scalytics-KafClaw's
// encrypt-at-rest / decrypt-per-use credential contract
// (internal/provider/credentials/store.go).
type Registry struct {
	tenants    store.TenantStore
	decryptor  CredentialDecryptor
	ttl        time.Duration
	mu         sync.RWMutex
	cache      map[string]cacheEntry
}

// cacheKey joins provider and provider_account_id into one cache key.
func cacheKey(provider domain.Provider, providerAccountID string) string {
	return string(provider) + ":" + providerAccountID
}

// NewRegistry builds a Registry with the given cache TTL.
func NewRegistry(tenants store.TenantStore, decryptor CredentialDecryptor, ttl time.Duration) *Registry {
	return &Registry{
		tenants:   tenants,
		decryptor: decryptor,
		ttl:       ttl,
		cache:     make(map[string]cacheEntry),
	}
}

// Resolve looks up the tenant bound to (provider, providerAccountID),
// decrypting its credentials for this call. Any lookup or decryption
// failure returns a KindConfigCrypto apperror with no tenant/provider
// identifiers in its message.
func (r *Registry) Resolve(ctx context.Context, provider domain.Provider, providerAccountID string) (TenantContext, error) {
	key := cacheKey(provider, providerAccountID)

	binding, ok := r.cachedBinding(key)
	if !ok {
		fresh, err := r.tenants.LookupBinding(ctx, provider, providerAccountID)
		if err != nil {
			return TenantContext{}, apperror.New(apperror.KindConfigCrypto, errBindingUnresolved)
		}
		r.storeBinding(key, fresh)
		binding = fresh
	}

	expectedTag := binding.TenantID + ":" + string(binding.Provider)
	if binding.ContextTag != expectedTag {
		return TenantContext{}, apperror.New(apperror.KindConfigCrypto, ErrCryptoContextMismatch)
	}

	plaintext, err := r.decryptor.Decrypt(binding.CredentialBlob, binding.ContextTag)
	if err != nil {
		return TenantContext{}, apperror.New(apperror.KindConfigCrypto, ErrCryptoContextMismatch)
	}

	tenantRow, err := r.tenants.GetTenant(ctx, binding.TenantID)
	if err != nil {
		return TenantContext{}, apperror.New(apperror.KindConfigCrypto, errBindingUnresolved)
	}
	if !tenantRow.IsActive {
		return TenantContext{}, apperror.New(apperror.KindConfigCrypto, errTenantInactive)
	}

	return TenantContext{
		TenantID:    binding.TenantID,
		IsActive:    tenantRow.IsActive,
		Provider:    binding.Provider,
		Credentials: plaintext,
	}, nil
}

var errBindingUnresolved = errors.New("tenant resolution failed")
var errTenantInactive = errors.New("tenant inactive")

func (r *Registry) cachedBinding(key string) (domain.ChannelBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return domain.ChannelBinding{}, false
	}
	return entry.binding, true
}

func (r *Registry) storeBinding(key string, binding domain.ChannelBinding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = cacheEntry{binding: binding, expiresAt: time.Now().Add(r.ttl)}
}

// Invalidate drops a cached binding immediately, used when a channel
// binding is rotated out-of-band.
func (r *Registry) Invalidate(provider domain.Provider, providerAccountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, cacheKey(provider, providerAccountID))
}

// String implements fmt.Stringer defensively so a TenantContext never
// accidentally logs its credentials via %v/%s formatting.
func (t TenantContext) String() string {
	return fmt.Sprintf("TenantContext{TenantID: %s, Provider: %s}", t.TenantID, t.Provider)
}
