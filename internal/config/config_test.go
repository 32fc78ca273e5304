package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/payway-gateway/internal/domain"
)

func TestSelectKey(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		want    string
		wantErr bool
	}{
		{name: "test mode", mode: ModeTest, want: "T_SECRET"},
		{name: "live mode", mode: ModeLive, want: "L_SECRET"},
		{name: "unknown mode", mode: "bogus", wantErr: true},
		{name: "empty mode", mode: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectKey(tt.mode, "T_SECRET", "L_SECRET")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsConfigurationError(err))
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGatewayConfig_Keys(t *testing.T) {
	cfg := GatewayConfig{
		Mode:               ModeLive,
		SecretKeyTest:      "T_SECRET",
		SecretKeyLive:      "L_SECRET",
		PublishableKeyTest: "T_PUB",
		PublishableKeyLive: "L_PUB",
	}

	secret, err := cfg.SecretKey()
	require.NoError(t, err)
	assert.Equal(t, "L_SECRET", secret)

	pub, err := cfg.PublishableKey()
	require.NoError(t, err)
	assert.Equal(t, "L_PUB", pub)

	cfg.Mode = "staging"
	_, err = cfg.PublishableKey()
	assert.True(t, domain.IsConfigurationError(err))
}

func TestGatewayConfig_Validate(t *testing.T) {
	valid := GatewayConfig{
		Mode:          ModeTest,
		MerchantID:    "TEST",
		APIBaseURL:    "https://api.payway.com.au/rest/v1",
		SecretKeyTest: "T_SECRET",
	}
	require.NoError(t, valid.Validate())

	missingMerchant := valid
	missingMerchant.MerchantID = ""
	assert.True(t, domain.IsConfigurationError(missingMerchant.Validate()))

	missingKey := valid
	missingKey.SecretKeyTest = ""
	assert.True(t, domain.IsConfigurationError(missingKey.Validate()))

	badMode := valid
	badMode.Mode = "bogus"
	assert.True(t, domain.IsConfigurationError(badMode.Validate()))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("PAYWAY_MERCHANT_ID", "TEST")
	t.Setenv("PAYWAY_MODE", "LIVE")
	t.Setenv("PAYWAY_API_URL", "https://api.payway.com.au/rest/v1/")
	t.Setenv("PAYWAY_TIMEOUT", "15")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ModeLive, cfg.Gateway.Mode)
	assert.Equal(t, "https://api.payway.com.au/rest/v1", cfg.Gateway.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "env", cfg.Secrets.Backend)
}

func TestLoadFromEnv_TrustedProxies(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("PAYWAY_MERCHANT_ID", "TEST")

	t.Setenv("TRUSTED_PROXIES", "")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1,,")
	cfg, err = LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
}

func TestLoadFromEnv_RequiresMerchant(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("PAYWAY_MERCHANT_ID", "")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "gateway")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "payway")

	cfg := LoadDatabaseFromEnv()
	assert.Equal(t, "postgres://gateway:pw@db.internal:6543/payway?sslmode=disable", cfg.ConnectionString())
	assert.Equal(t, int32(25), cfg.MaxConns)
}
