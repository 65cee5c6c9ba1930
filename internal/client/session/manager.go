package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/sync/singleflight"

	"github.com/yndnr/taskdeck-go/internal/client/transport"
	"github.com/yndnr/taskdeck-go/internal/core/domain"
	"github.com/yndnr/taskdeck-go/internal/storage"
	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
	"github.com/yndnr/taskdeck-go/internal/telemetry/metric"
)

// Auth endpoint paths.
const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathRefresh  = "/auth/refresh"
)

// Registration messages.
const (
	MessageRegistered         = "Registration successful"
	MessageRegistrationFailed = "Registration failed"
)

// Doer dispatches a request. *transport.Client implements it.
type Doer interface {
	Do(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// RegisterResult is the outcome of a registration attempt.
type RegisterResult struct {
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message" yaml:"message"`
}

// Manager owns the login state: {Anonymous, Authenticated}. The state is
// derived from the token store on every query and never cached.
type Manager struct {
	store   storage.TokenStore
	client  Doer
	log     logger.Logger
	metrics *metric.Registry
	group   singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithMetrics records refresh results in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(m *Manager) { m.metrics = reg }
}

// New creates a Manager over store, sending auth calls through client.
func New(store storage.TokenStore, client Doer, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		client: client,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "session")
	return m
}

// IsAuthenticated reports whether an access token is stored.
func (m *Manager) IsAuthenticated() bool {
	return m.store.AccessToken() != ""
}

// AccessToken returns the stored access token or "".
func (m *Manager) AccessToken() string {
	return m.store.AccessToken()
}

// HasRefreshToken reports whether a refresh token is stored.
func (m *Manager) HasRefreshToken() bool {
	return m.store.RefreshToken() != ""
}

// Login exchanges credentials for a token pair and stores it.
// Any failure returns false and leaves the store untouched.
func (m *Manager) Login(ctx context.Context, username, password string) bool {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	pair, err := m.requestTokens(ctx, transport.NewFormRequest(http.MethodPost, PathLogin, form))
	if err != nil {
		m.log.Warn("login failed", "user", username, "code", domain.CodeOf(err), "status", domain.StatusOf(err))
		return false
	}
	if err := m.store.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		m.log.Error("store tokens after login failed", "error", err)
		return false
	}
	m.log.Info("logged in", "user", username)
	return true
}

// Register creates an account. It never returns an error; failures are
// reported through the result message.
func (m *Manager) Register(ctx context.Context, username, email, password string) RegisterResult {
	req, err := transport.NewJSONRequest(http.MethodPost, PathRegister, map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err == nil {
		_, err = m.client.Do(ctx, req)
	}
	if err == nil {
		m.log.Info("registered", "user", username)
		return RegisterResult{Success: true, Message: MessageRegistered}
	}

	m.log.Warn("registration failed", "user", username, "code", domain.CodeOf(err), "status", domain.StatusOf(err))
	return RegisterResult{Success: false, Message: registrationMessage(err)}
}

// Refresh exchanges the stored refresh token for a new pair.
//
// Without a refresh token it returns false and makes no call. Any failure
// clears both tokens. Concurrent callers share one in-flight refresh.
func (m *Manager) Refresh(ctx context.Context) bool {
	ctx = context.WithoutCancel(ctx)
	v, _, _ := m.group.Do("refresh", func() (any, error) {
		return m.refresh(ctx), nil
	})
	return v.(bool)
}

func (m *Manager) refresh(ctx context.Context) bool {
	refreshToken := m.store.RefreshToken()
	if refreshToken == "" {
		m.log.Debug("refresh skipped: no refresh token")
		return false
	}

	req, err := transport.NewJSONRequest(http.MethodPost, PathRefresh, map[string]string{
		"refresh_token": refreshToken,
	})
	var pair domain.TokenPair
	if err == nil {
		pair, err = m.requestTokens(ctx, req)
	}
	if err == nil {
		err = m.store.SetTokens(pair.AccessToken, pair.RefreshToken)
	}
	if err != nil {
		m.log.Warn("token refresh failed", "code", domain.CodeOf(err), "status", domain.StatusOf(err), "error", err)
		if cerr := m.store.ClearTokens(); cerr != nil {
			m.log.Error("clear tokens after failed refresh", "error", cerr)
		}
		m.metrics.ObserveRefresh(false)
		return false
	}

	m.log.Debug("token refreshed")
	m.metrics.ObserveRefresh(true)
	return true
}

// Logout clears both tokens. It is idempotent.
func (m *Manager) Logout() error {
	if err := m.store.ClearTokens(); err != nil {
		return err
	}
	m.log.Info("logged out")
	return nil
}

// requestTokens sends req and decodes a complete token pair from the reply.
func (m *Manager) requestTokens(ctx context.Context, req *transport.Request) (domain.TokenPair, error) {
	resp, err := m.client.Do(ctx, req)
	if err != nil {
		return domain.TokenPair{}, err
	}
	var pair domain.TokenPair
	if err := resp.Decode(&pair); err != nil {
		return domain.TokenPair{}, err
	}
	if !pair.Valid() {
		return domain.TokenPair{}, &domain.RequestError{
			Message: "token response is missing a token",
			Code:    domain.CodeDecode,
			Status:  resp.Status,
		}
	}
	return pair, nil
}

// registrationMessage prefers the server-supplied reason. Transport
// failures without a server reply get the generic message.
func registrationMessage(err error) string {
	var rerr *domain.RequestError
	if errors.As(err, &rerr) && rerr.Status != 0 && rerr.Message != domain.MessageGeneric {
		return rerr.Message
	}
	return MessageRegistrationFailed
}
