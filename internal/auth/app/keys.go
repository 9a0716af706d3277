package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/syedsanaulhaq/scl/pkg/cryptox"
	"github.com/syedsanaulhaq/scl/pkg/jwtx"
)

var ErrMissingSecret = errors.New("signing secret not configured")

// LoadKeyConfig builds the token key material from cfg.
//
// Outside production a missing secret is replaced with a random one so the
// service starts with no setup. Tokens minted with it do not survive a
// restart, and a WARN naming the fallback is logged for each class.
func LoadKeyConfig(cfg Config, logger *slog.Logger) (jwtx.KeyConfig, error) {
	access, err := resolveSecret(cfg, jwtx.AccessToken, cfg.AccessSecret, logger)
	if err != nil {
		return jwtx.KeyConfig{}, err
	}
	refresh, err := resolveSecret(cfg, jwtx.RefreshToken, cfg.RefreshSecret, logger)
	if err != nil {
		return jwtx.KeyConfig{}, err
	}

	keys := jwtx.KeyConfig{
		Issuer:        cfg.Issuer,
		AccessSecret:  access,
		RefreshSecret: refresh,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	if err := keys.Validate(); err != nil {
		return jwtx.KeyConfig{}, err
	}

	logger.Info("token keys loaded",
		"issuer", keys.Issuer,
		"access_ttl", keys.AccessTTL,
		"refresh_ttl", keys.RefreshTTL,
	)
	return keys, nil
}

func resolveSecret(cfg Config, class jwtx.TokenClass, value string, logger *slog.Logger) ([]byte, error) {
	if value != "" {
		return []byte(value), nil
	}

	envVar := "AUTH_" + strings.ToUpper(class.String()) + "_SECRET"
	if cfg.IsProduction() {
		return nil, fmt.Errorf("%w: set %s or %s_FILE", ErrMissingSecret, envVar, envVar)
	}

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("generate %s secret: %w", class, err)
	}
	logger.Warn("signing secret not configured, using an ephemeral random secret",
		"env_var", envVar,
		"fingerprint", cryptox.FingerprintToken(secret),
	)
	return []byte(secret), nil
}
