package native

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Client issues typed commands to the connector. Calls are serialized: the
// channel carries exactly one request/response pair at a time, and nothing
// is ever retried from this layer.
type Client struct {
	mu        sync.Mutex
	transport Transport
	logger    *log.Logger
	timeout   time.Duration
	broken    error
}

// Option configures a Client.
type Option func(*Client)

// WithLogger enables debug logging of protocol traffic.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout bounds each call. Zero means no timeout: a hung connector
// hangs the call until the context is cancelled.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient wraps a transport.
func NewClient(t Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect spawns the configured connector process and returns a client
// over it.
func Connect(opts ...Option) (*Client, error) {
	t, err := Spawn(ConnectorPath())
	if err != nil {
		return nil, err
	}
	return NewClient(t, opts...), nil
}

// Close shuts down the underlying transport.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport.Close()
}

// Call sends cmd with params and returns the response data, failing with
// PeerError when the connector reports an Error and MismatchError when the
// tag differs from want.
func (c *Client) Call(ctx context.Context, cmd string, params any, want string) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		return nil, fmt.Errorf("connector channel unusable: %w", c.broken)
	}

	c.logger.Debug("sending command", "cmd", cmd)

	type result struct {
		env Envelope
		err error
	}
	done := make(chan result, 1)
	go func() {
		env, err := c.transport.RoundTrip(Request{Cmd: cmd, Params: params})
		done <- result{env, err}
	}()

	var env Envelope
	select {
	case <-ctx.Done():
		// The stream has a response in flight we will never read; the
		// channel is desynchronized from here on.
		c.broken = ctx.Err()
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		env = res.env
	}

	c.logger.Debug("received response", "cmd", cmd, "type", env.Type)

	switch env.Type {
	case TagError:
		var msg string
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			msg = string(env.Data)
		}
		return nil, PeerError{Message: msg}
	case want:
		return env.Data, nil
	default:
		return nil, MismatchError{Expected: want, Received: env.Type}
	}
}

func call[T any](ctx context.Context, c *Client, cmd string, params any, want string) (T, error) {
	var out T
	data, err := c.Call(ctx, cmd, params, want)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s data: %w", want, err)
	}
	return out, nil
}

// SystemInfo fetches the connector's version handshake.
func (c *Client) SystemInfo(ctx context.Context) (SystemInfo, error) {
	return call[SystemInfo](ctx, c, CmdGetSystemInfo, nil, TagSystemInfo)
}

// SiteList fetches all installed sites keyed by id.
func (c *Client) SiteList(ctx context.Context) (map[string]Site, error) {
	return call[map[string]Site](ctx, c, CmdGetSiteList, nil, TagSiteList)
}

// ProfileList fetches all profiles keyed by ulid.
func (c *Client) ProfileList(ctx context.Context) (map[string]Profile, error) {
	return call[map[string]Profile](ctx, c, CmdGetProfileList, nil, TagProfileList)
}

// CreateProfile creates a profile and returns its new ulid.
func (c *Client) CreateProfile(ctx context.Context, params CreateProfileParams) (string, error) {
	return call[string](ctx, c, CmdCreateProfile, params, TagProfileCreated)
}

// UpdateProfile renames an existing profile.
func (c *Client) UpdateProfile(ctx context.Context, params UpdateProfileParams) error {
	_, err := c.Call(ctx, CmdUpdateProfile, params, TagProfileUpdated)
	return err
}

// RemoveProfile deletes a profile and everything installed in it.
func (c *Client) RemoveProfile(ctx context.Context, params RemoveProfileParams) error {
	_, err := c.Call(ctx, CmdRemoveProfile, params, TagProfileRemoved)
	return err
}

// InstallSite installs a site and returns the connector's opaque result.
func (c *Client) InstallSite(ctx context.Context, req InstallRequest) (json.RawMessage, error) {
	return c.Call(ctx, CmdInstallSite, req, TagSiteInstalled)
}

// UninstallSite removes an installed site.
func (c *Client) UninstallSite(ctx context.Context, params UninstallSiteParams) error {
	_, err := c.Call(ctx, CmdUninstallSite, params, TagSiteUninstalled)
	return err
}

// UpdateSite changes the stored overrides of an installed site.
func (c *Client) UpdateSite(ctx context.Context, params UpdateSiteParams) error {
	_, err := c.Call(ctx, CmdUpdateSite, params, TagSiteUpdated)
	return err
}

// LaunchSite starts an installed site.
func (c *Client) LaunchSite(ctx context.Context, params LaunchSiteParams) error {
	_, err := c.Call(ctx, CmdLaunchSite, params, TagSiteLaunched)
	return err
}

// IsPeerError reports whether err is an explicit connector failure.
func IsPeerError(err error) bool {
	var pe PeerError
	return errors.As(err, &pe)
}
