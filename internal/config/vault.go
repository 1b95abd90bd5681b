package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// vaultClient wraps the Vault API client for secret loading at startup.
type vaultClient struct {
	client *vault.Client
}

// newVaultClient creates an authenticated Vault client from the config.
// The token can come from the config, a token file, or VAULT_TOKEN.
func newVaultClient(cfg *VaultConfig) (*vaultClient, error) {
	vaultConfig := vault.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read Vault token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("no Vault token configured")
	}
	client.SetToken(token)

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	return &vaultClient{client: client}, nil
}

// readSecretField reads a single field from a KV secret path formatted as
// "path#field" (field defaults to "value").
func (vc *vaultClient) readSecretField(ctx context.Context, ref string) (string, error) {
	path, field := ref, "value"
	if idx := strings.LastIndex(ref, "#"); idx >= 0 {
		path, field = ref[:idx], ref[idx+1:]
	}

	secret, err := vc.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read Vault secret %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret %s not found", path)
	}

	// KV v2 nests fields under "data"
	data := secret.Data
	if nested, ok := secret.Data["data"].(map[string]any); ok {
		data = nested
	}

	value, ok := data[field].(string)
	if !ok {
		return "", fmt.Errorf("vault secret %s has no string field %q", path, field)
	}
	return value, nil
}

// loadVaultSecrets overrides config values with secrets from Vault.
// Server API keys are stored comma-separated.
func (c *Config) loadVaultSecrets() error {
	vc, err := newVaultClient(&c.Vault)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if ref := c.Vault.Secrets.APIKeys; ref != "" {
		raw, err := vc.readSecretField(ctx, ref)
		if err != nil {
			return err
		}
		keys := strings.Split(raw, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		c.Server.APIKeys = keys
	}

	if ref := c.Vault.Secrets.GeminiKey; ref != "" {
		key, err := vc.readSecretField(ctx, ref)
		if err != nil {
			return err
		}
		c.AI.APIKey = key
	}

	return nil
}
