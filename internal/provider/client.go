package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/govnotify/letterpipe/internal/clock"
	"github.com/govnotify/letterpipe/internal/config"
	"github.com/govnotify/letterpipe/internal/locks"
	"github.com/govnotify/letterpipe/internal/observability/tracing"
	"github.com/govnotify/letterpipe/internal/secrets"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	authenticatePath = "/thirdparty-access/v1/authenticate"
	passwordPath     = "/thirdparty-access/v1/password"
	newAPIKeyPath    = "/thirdparty-access/v1/new-api-key"
)

type Params struct {
	fx.In

	Cfg     config.Config
	Secrets secrets.Store
	Locker  locks.Locker
	Clock   clock.Clock
	Log     *zap.Logger
}

// Client talks to the DVLA Print API. It keeps a per-process JWT session
// and TTL-cached credentials; rotation of either credential takes the
// shared distributed lock so two workers never rotate concurrently.
type Client struct {
	cfg    config.ProviderConfig
	http   *http.Client
	locker locks.Locker
	clock  clock.Clock
	log    *zap.Logger

	username *Credential
	password *Credential
	apiKey   *Credential

	mu          sync.Mutex
	token       string
	tokenExpiry int64
}

func New(p Params) *Client {
	cfg := p.Cfg.Provider
	httpClient := tracing.WrapHTTPClient(&http.Client{Timeout: 30 * time.Second})
	return &Client{
		cfg:      cfg,
		http:     httpClient,
		locker:   p.Locker,
		clock:    p.Clock,
		log:      p.Log.Named("provider.dvla"),
		username: NewCredentialWithNow(p.Secrets, cfg.UsernameSecret, cfg.CredentialTTL, p.Clock.Now),
		password: NewCredentialWithNow(p.Secrets, cfg.PasswordSecret, cfg.CredentialTTL, p.Clock.Now),
		apiKey:   NewCredentialWithNow(p.Secrets, cfg.APIKeySecret, cfg.CredentialTTL, p.Clock.Now),
	}
}

// JWTToken returns the cached session token, re-authenticating when the
// token is absent or its expiry has passed. Expiry is compared with zero
// grace.
func (c *Client) JWTToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.tokenExpiry > c.clock.Now().Unix() {
		return c.token, nil
	}
	token, err := c.authenticate(ctx)
	if err != nil {
		return "", err
	}
	expiry, err := tokenExpiry(token)
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	c.token = token
	c.tokenExpiry = expiry
	return token, nil
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	username, err := c.username.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read username: %w", err)
	}
	password, err := c.password.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	var out struct {
		IDToken string `json:"id-token"`
	}
	err = c.post(ctx, authenticatePath, nil, map[string]string{
		"userName": username,
		"password": password,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.IDToken, nil
}

// ChangePassword rotates the provider account password. Fails fast with
// locks.ErrLockHeld when another worker holds the rotation lock; on any
// provider error the cached password is left untouched.
func (c *Client) ChangePassword(ctx context.Context) error {
	release, err := c.locker.TryAcquire(ctx, c.cfg.RotationLockName)
	if err != nil {
		return err
	}
	defer release()

	username, err := c.username.Get(ctx)
	if err != nil {
		return fmt.Errorf("read username: %w", err)
	}
	current, err := c.password.Get(ctx)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	next := GeneratePassword(c.cfg.NewPasswordLength)

	err = c.post(ctx, passwordPath, nil, map[string]string{
		"userName":    username,
		"password":    current,
		"newPassword": next,
	}, nil)
	if err != nil {
		return err
	}
	if err := c.password.Set(ctx, next); err != nil {
		return fmt.Errorf("store rotated password: %w", err)
	}
	c.log.Info("provider password rotated")
	return nil
}

// ChangeAPIKey rotates the API key under the same lock as password
// rotation, so no two credential mutations ever run concurrently.
func (c *Client) ChangeAPIKey(ctx context.Context) error {
	release, err := c.locker.TryAcquire(ctx, c.cfg.RotationLockName)
	if err != nil {
		return err
	}
	defer release()

	token, err := c.JWTToken(ctx)
	if err != nil {
		return err
	}
	current, err := c.apiKey.Get(ctx)
	if err != nil {
		return fmt.Errorf("read api key: %w", err)
	}

	var out struct {
		NewAPIKey string `json:"newApiKey"`
	}
	headers := map[string]string{
		"Authorization": token,
		"x-api-key":     current,
	}
	if err := c.post(ctx, newAPIKeyPath, headers, nil, &out); err != nil {
		return err
	}
	if err := c.apiKey.Set(ctx, out.NewAPIKey); err != nil {
		return fmt.Errorf("store rotated api key: %w", err)
	}
	c.log.Info("provider api key rotated")
	return nil
}

func (c *Client) post(ctx context.Context, path string, headers map[string]string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("provider request %s: status %d: %s", path, resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response %s: %w", path, err)
	}
	return nil
}
