package secrets

import (
	"context"
	"fmt"

	"github.com/kevin07696/payway-gateway/internal/config"
	"github.com/kevin07696/payway-gateway/internal/domain/ports"
)

// Backends supported by NewFromConfig
const (
	BackendEnv   = "env"
	BackendLocal = "local"
	BackendAWS   = "aws"
	BackendVault = "vault"
)

// NewFromConfig builds the configured secret manager.
// The env backend returns a nil manager: keys are already in GatewayConfig.
func NewFromConfig(ctx context.Context, cfg config.SecretsConfig, logger ports.Logger) (ports.SecretManager, error) {
	switch cfg.Backend {
	case BackendEnv, "":
		return nil, nil
	case BackendLocal:
		return NewLocalSecretManager(cfg.LocalPath, logger), nil
	case BackendAWS:
		return NewAWSSecretManager(ctx, AWSConfig{
			Region:   cfg.AWSRegion,
			Profile:  cfg.AWSProfile,
			Endpoint: cfg.AWSEndpoint,
			CacheTTL: DefaultCacheTTL,
		}, logger)
	case BackendVault:
		return NewVaultSecretManager(VaultConfig{
			Address:   cfg.VaultAddress,
			Token:     cfg.VaultToken,
			MountPath: cfg.VaultMount,
			CacheTTL:  DefaultCacheTTL,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported secrets backend %q", cfg.Backend)
	}
}

// LoadGatewayKeys fills PayWay keys that are empty in gw from manager.
// Keys for the active mode are required; the other mode's keys are best-effort.
func LoadGatewayKeys(ctx context.Context, manager ports.SecretManager, cfg config.SecretsConfig, gw *config.GatewayConfig, logger ports.Logger) error {
	if manager == nil {
		return nil
	}

	keys := []struct {
		name  string
		path  string
		mode  config.Mode
		field *string
	}{
		{name: "secret key (test)", path: cfg.SecretKeyTestPath, mode: config.ModeTest, field: &gw.SecretKeyTest},
		{name: "publishable key (test)", path: cfg.PublishableKeyTestPath, mode: config.ModeTest, field: &gw.PublishableKeyTest},
		{name: "secret key (live)", path: cfg.SecretKeyLivePath, mode: config.ModeLive, field: &gw.SecretKeyLive},
		{name: "publishable key (live)", path: cfg.PublishableKeyLivePath, mode: config.ModeLive, field: &gw.PublishableKeyLive},
	}

	for _, k := range keys {
		if *k.field != "" || k.path == "" {
			continue
		}

		secret, err := manager.GetSecret(ctx, k.path)
		if err != nil {
			if k.mode == gw.Mode {
				return fmt.Errorf("load PayWay %s: %w", k.name, err)
			}
			logger.Warn("PayWay key not loaded",
				ports.String("key", k.name),
				ports.String("path", k.path),
				ports.Err(err),
			)
			continue
		}
		*k.field = secret.Value
		logger.Info("PayWay key loaded",
			ports.String("key", k.name),
			ports.String("path", k.path),
			ports.String("version", secret.Version),
		)
	}
	return nil
}
