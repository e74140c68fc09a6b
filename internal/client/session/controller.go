// Package session is the single source of truth for authentication state.
// The controller owns login, register, logout, and bootstrap-on-load, and is
// the only component that decides whether a failure demotes the session to
// anonymous. There is one controller instance per process.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/client"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/credentials"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/models"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/common"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/logging"
)

// Status is the authentication state. Exactly one holds at a time.
type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusError          Status = "error"
)

// State is a snapshot of the session. StatusAuthenticated implies a
// non-nil User.
type State struct {
	Status Status
	User   *models.UserRecord
	Err    string
}

// Controller drives the session state machine. Only one authentication
// operation (login, register, or bootstrap) may be in flight at a time; a
// second call while one is pending is rejected with common.ErrBusy instead
// of racing two state transitions.
type Controller struct {
	mu    sync.Mutex
	state State
	busy  bool

	client client.Client
	store  *credentials.Store
	log    logging.Logger
}

func NewController(c client.Client, store *credentials.Store, log logging.Logger) *Controller {
	return &Controller{
		state:  State{Status: StatusAnonymous},
		client: c,
		store:  store,
		log:    log.With("component", "session"),
	}
}

// State returns a snapshot of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// beginAuthOp marks an authentication operation as in flight. The check and
// the set happen under one lock acquisition so two concurrent callers can
// never both proceed.
func (c *Controller) beginAuthOp() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrBusy
	}
	c.busy = true
	return nil
}

func (c *Controller) endAuthOp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
}

// Bootstrap resolves the initial session state from the credential store.
// With no usable cached session it settles anonymous immediately. Otherwise
// it optimistically settles authenticated with the cached user and verifies
// the token in the background by fetching the profile; a rejected token
// clears the stored credentials and demotes the session to anonymous, while
// a transient failure leaves the optimistic state in place.
//
// The returned channel closes when verification has settled, so callers
// that need the final answer can wait on it.
func (c *Controller) Bootstrap(ctx context.Context) (<-chan struct{}, error) {
	if err := c.beginAuthOp(); err != nil {
		return nil, err
	}

	done := make(chan struct{})

	creds := c.store.Load(ctx)
	if !creds.HasAccessToken() || creds.User == nil {
		c.setState(State{Status: StatusAnonymous})
		c.endAuthOp()
		close(done)
		return done, nil
	}

	c.setState(State{Status: StatusAuthenticated, User: creds.User})
	c.log.Debug(ctx, "session restored from cache", "username", creds.User.Username)

	go func() {
		defer c.endAuthOp()
		defer close(done)
		c.verify(ctx)
	}()
	return done, nil
}

func (c *Controller) verify(ctx context.Context) {
	user, err := c.client.GetProfile(ctx)
	switch {
	case err == nil:
		creds := c.store.Load(ctx)
		creds.User = user
		if err := c.store.Save(ctx, creds); err != nil {
			c.log.Warn(ctx, "failed to persist refreshed user record", "error", err)
		}
		c.setState(State{Status: StatusAuthenticated, User: user})
		c.log.Info(ctx, "session verified", "username", user.Username)
	case errors.Is(err, common.ErrUnauthorized):
		c.log.Info(ctx, "cached session rejected, signing out")
		if err := c.store.Clear(ctx); err != nil {
			c.log.Warn(ctx, "failed to clear credentials", "error", err)
		}
		c.setState(State{Status: StatusAnonymous})
	default:
		// Transient failure: keep the optimistic state, the next request
		// will settle it one way or the other.
		c.log.Warn(ctx, "session verification inconclusive", "error", err)
	}
}

// Login authenticates against the service and persists the session material.
// On failure the state carries the server-supplied message and nothing is
// persisted.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if err := c.beginAuthOp(); err != nil {
		return err
	}
	defer c.endAuthOp()

	c.setState(State{Status: StatusAuthenticating})

	res, err := c.client.Login(ctx, username, password)
	if err != nil {
		c.log.Info(ctx, "login failed", "username", username)
		c.setState(State{Status: StatusError, Err: userMessage(err)})
		return err
	}

	creds := models.Credentials{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	}
	if err := c.store.Save(ctx, creds); err != nil {
		// The session is valid in memory even if persistence failed; it just
		// will not survive a restart.
		c.log.Warn(ctx, "failed to persist session", "error", err)
	}

	c.setState(State{Status: StatusAuthenticated, User: res.User})
	c.log.Info(ctx, "login succeeded", "username", res.User.Username)
	return nil
}

// Register creates a new account. Registration never auto-authenticates:
// on success the session returns to anonymous and the user logs in
// explicitly.
func (c *Controller) Register(ctx context.Context, req client.RegisterRequest) error {
	if err := c.beginAuthOp(); err != nil {
		return err
	}
	defer c.endAuthOp()

	c.setState(State{Status: StatusAuthenticating})

	if err := c.client.Register(ctx, req); err != nil {
		c.log.Info(ctx, "registration failed", "username", req.Username)
		c.setState(State{Status: StatusError, Err: userMessage(err)})
		return err
	}

	c.setState(State{Status: StatusAnonymous})
	c.log.Info(ctx, "registration succeeded", "username", req.Username)
	return nil
}

// Logout revokes the session remotely on a best-effort basis and always
// clears local state. It cannot fail from the caller's perspective.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.client.Logout(ctx); err != nil {
		c.log.Warn(ctx, "remote logout failed, clearing local session anyway", "error", err)
	}
	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear credentials", "error", err)
	}
	c.setState(State{Status: StatusAnonymous})
	c.log.Info(ctx, "logged out")
}

// ClearError drops the error message. An error status reverts to anonymous;
// any other status is left unchanged.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Err = ""
	if c.state.Status == StatusError {
		c.state.Status = StatusAnonymous
	}
}

// InvalidateIfUnauthorized demotes the session when a request elsewhere in
// the app exhausted token recovery. The transport layer only reports the
// failure; deciding that it ends the session happens here.
func (c *Controller) InvalidateIfUnauthorized(ctx context.Context, err error) bool {
	if !errors.Is(err, common.ErrUnauthorized) {
		return false
	}
	c.log.Info(ctx, "session invalidated, re-authentication required")
	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear credentials", "error", err)
	}
	c.setState(State{Status: StatusAnonymous})
	return true
}

// userMessage maps a transport error to a message suitable for display.
func userMessage(err error) string {
	var ae *client.AuthError
	if errors.As(err, &ae) && ae.Detail != "" {
		return ae.Detail
	}
	var ve *client.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	if client.IsNetworkError(err) {
		return "server unreachable, please try again"
	}
	if errors.Is(err, common.ErrUnauthorized) {
		return "invalid credentials"
	}
	var se *client.StatusError
	if errors.As(err, &se) {
		return "the service reported an unexpected error"
	}
	return err.Error()
}
