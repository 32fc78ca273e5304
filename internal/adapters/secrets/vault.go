package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/kevin07696/payway-gateway/internal/domain/ports"
)

// VaultConfig contains configuration for the HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Token for token authentication
	Token string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV v2 secrets engine mount path (default: "secret")
	MountPath string

	// Cache TTL; 0 disables caching
	CacheTTL time.Duration
}

// vaultSecretManager implements ports.SecretManager for a Vault KV v2 engine
type vaultSecretManager struct {
	client    *vault.Client
	mountPath string
	logger    ports.Logger
	cache     *secretCache
}

// NewVaultSecretManager creates a new HashiCorp Vault adapter using token auth
func NewVaultSecretManager(cfg VaultConfig, logger ports.Logger) (ports.SecretManager, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required for token auth")
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	mount := cfg.MountPath
	if mount == "" {
		mount = "secret"
	}

	logger.Info("Vault adapter initialized",
		ports.String("address", cfg.Address),
		ports.String("mount_path", mount),
	)

	return &vaultSecretManager{
		client:    client,
		mountPath: mount,
		logger:    logger,
		cache:     newSecretCache(cfg.CacheTTL),
	}, nil
}

// GetSecret reads the "value" field of a KV v2 secret, e.g. "payway-gateway/live/secret-key"
func (v *vaultSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := v.cache.get(path); cached != nil {
		v.logger.Debug("Secret retrieved from cache", ports.String("path", path))
		return cached, nil
	}

	fullPath := fmt.Sprintf("%s/data/%s", v.mountPath, path)
	secret, err := v.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		v.logger.Error("Failed to retrieve secret from Vault",
			ports.String("path", path),
			ports.Err(err),
		)
		return nil, fmt.Errorf("failed to read secret from Vault: %w", err)
	}
	if secret == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid secret format from Vault: %s", path)
	}
	value, ok := data["value"].(string)
	if !ok || value == "" {
		return nil, fmt.Errorf("secret %s has no value field", path)
	}

	result := &ports.Secret{
		Value:    value,
		Metadata: map[string]string{"path": path},
	}
	if metadata, ok := secret.Data["metadata"].(map[string]interface{}); ok {
		if ver, ok := metadata["version"].(json.Number); ok {
			result.Version = ver.String()
		}
		if ct, ok := metadata["created_time"].(string); ok {
			result.CreatedAt = ct
		}
	}

	v.logger.Info("Secret retrieved from Vault", ports.String("path", path))
	v.cache.set(path, result)
	return result, nil
}
