package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
)

// AuthKeys holds the two HMAC keys. Access and refresh tokens are signed
// with different secrets and carry different typ claims, so neither can
// stand in for the other.
type AuthKeys struct {
	Access  *jwtx.HS256
	Refresh *jwtx.HS256
}

// InitAuthKeys builds the token keys from the configured secrets. Outside
// prod a missing secret is replaced by a random one, which means every
// token is invalidated on restart.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*AuthKeys, error) {
	if cfg.MasterKeyPath != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyPath)
		logger.Info("master key path configured", "path", cfg.MasterKeyPath)
	}

	accessSecret, err := secretOrRandom(cfg.AccessSecret, "JWT_ACCESS_SECRET", logger)
	if err != nil {
		return nil, err
	}
	refreshSecret, err := secretOrRandom(cfg.RefreshSecret, "JWT_REFRESH_SECRET", logger)
	if err != nil {
		return nil, err
	}

	access, err := jwtx.NewHS256(accessSecret, jwtx.HS256Options{
		Issuer: cfg.Issuer,
		Type:   jwtx.TypeAccess,
	})
	if err != nil {
		return nil, fmt.Errorf("access key: %w", err)
	}

	refresh, err := jwtx.NewHS256(refreshSecret, jwtx.HS256Options{
		Issuer: cfg.Issuer,
		Type:   jwtx.TypeRefresh,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh key: %w", err)
	}

	logger.Info("token keys initialized",
		"issuer", cfg.Issuer,
		"access_ttl", cfg.AccessTTL,
		"refresh_ttl", cfg.RefreshTTL,
		"rotate_refresh", cfg.RotateRefresh,
	)

	return &AuthKeys{Access: access, Refresh: refresh}, nil
}

func secretOrRandom(secret, name string, logger *slog.Logger) ([]byte, error) {
	if secret != "" {
		return []byte(secret), nil
	}

	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	logger.Warn("secret not configured, using an ephemeral one; tokens will not survive a restart", "env", name)

	return buf, nil
}
