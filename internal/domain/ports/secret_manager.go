package ports

import "context"

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., PayWay secret API key)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManager retrieves PayWay API keys from a secret store.
// Path format depends on implementation:
//   - AWS: "payway-gateway/live/secret-key" or full ARN
//   - Vault: "payway-gateway/live" (KV v2, field "value")
//   - Local: file path relative to the base directory
type SecretManager interface {
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
