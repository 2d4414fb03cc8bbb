package domain

// Tenant is an isolated logical customer with its own channel
// credentials and config.
type Tenant struct {
	ID       string         `json:"id"`
	IsActive bool           `json:"is_active"`
	Config   map[string]any `json:"config"`
}

// ChannelBinding maps a tenant to a provider-specific identity.
// CredentialBlob is opaque ciphertext; decryption is an external
// collaborator (see internal/tenant.CredentialDecryptor).
type ChannelBinding struct {
	TenantID          string   `json:"tenant_id"`
	Provider          Provider `json:"provider"`
	ProviderAccountID string   `json:"provider_account_id"`
	CredentialBlob    []byte   `json:"-"`
	ContextTag        string   `json:"-"`
	IsActive          bool     `json:"is_active"`
}

// InboundMessageRecord is the persisted dedup marker for one inbound
// message: (tenant_id, provider, message_id) -> received_at.
type InboundMessageRecord struct {
	TenantID  string
	Provider  Provider
	MessageID string
}
