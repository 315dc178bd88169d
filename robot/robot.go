package robot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360/waverobot/capability"
	"github.com/c360/waverobot/config"
	"github.com/c360/waverobot/errors"
	"github.com/c360/waverobot/events"
	"github.com/c360/waverobot/metric"
	"github.com/c360/waverobot/oauth"
	"github.com/c360/waverobot/rpc"
	"github.com/c360/waverobot/wave"
)

// ProtocolVersion is the robot wire protocol version this framework
// speaks. It is announced in capabilities.xml and stamped on every
// operation batch.
const ProtocolVersion = "0.21"

// ParticipantProfile is the public identity served for the robot, or for
// a proxied participant when a profile handler is installed.
type ParticipantProfile struct {
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl"`
	ProfileURL string `json:"profileUrl"`
}

// ProfileHandler resolves the profile for a proxied participant name.
// Returning nil falls back to the robot's own profile.
type ProfileHandler func(name string) *ParticipantProfile

// Option configures a Robot at construction time.
type Option func(*Robot)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Robot) { r.logger = logger }
}

// WithMetrics attaches a metric set. Without it the robot runs
// uninstrumented.
func WithMetrics(m *metric.Set) Option {
	return func(r *Robot) { r.metrics = m }
}

// WithProfileHandler installs a resolver for proxied participant
// profiles.
func WithProfileHandler(fn ProfileHandler) Option {
	return func(r *Robot) { r.profileHandler = fn }
}

// WithFetcher overrides the HTTP transport used for active-API
// submissions.
func WithFetcher(f rpc.Fetcher) Option {
	return func(r *Robot) { r.fetcher = f }
}

// Robot is one robot identity: its registered event handlers, its
// capability declarations, and the credentials it signs and validates
// with.
type Robot struct {
	cfg            config.Config
	logger         *slog.Logger
	metrics        *metric.Set
	fetcher        rpc.Fetcher
	profileHandler ProfileHandler

	dispatcher *events.Dispatcher
	registry   *capability.Registry
	validators map[string]*oauth.Validator

	clientOnce sync.Once
	client     *rpc.Client
}

// New builds a Robot from a validated configuration.
func New(cfg config.Config, opts ...Option) (*Robot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Robot", "New", "validate configuration")
	}

	r := &Robot{
		cfg:        cfg,
		logger:     slog.Default(),
		fetcher:    rpc.NewHTTPFetcher(),
		registry:   capability.NewRegistry(),
		validators: make(map[string]*oauth.Validator, len(cfg.Credentials)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.dispatcher = events.NewDispatcher(r.logger)
	for _, cred := range cfg.Credentials {
		r.validators[cred.RPCServerURL] = oauth.NewValidator(
			cred.ConsumerKey, cred.ConsumerSecret, r.logger)
	}
	return r, nil
}

// HandleOption configures one Handle call.
type HandleOption func(*handleOptions)

type handleOptions struct {
	contexts []capability.Context
	filter   string
}

// WithContexts declares which surrounding blips the server should ship
// alongside events of this type. Without it the server default applies.
func WithContexts(contexts ...capability.Context) HandleOption {
	return func(o *handleOptions) { o.contexts = contexts }
}

// WithFilter narrows delivery of this event type to content matching the
// given pattern. Only meaningful for content-bearing events.
func WithFilter(filter string) HandleOption {
	return func(o *handleOptions) { o.filter = filter }
}

// Handle binds fn to an event type and records the matching capability
// declaration. It fails once the capability version has been computed,
// since the published hash must keep describing the declarations it was
// computed from.
func (r *Robot) Handle(t events.Type, fn events.HandlerFunc, opts ...HandleOption) error {
	if !t.Known() {
		return errors.WrapArgument(fmt.Errorf("unknown event type %q", t),
			"Robot", "Handle", "bind handler")
	}
	var o handleOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !r.registry.Register(string(t), o.contexts, o.filter) {
		return errors.WrapState(errors.ErrRegistryFrozen, "Robot", "Handle",
			"register capability for "+string(t))
	}
	r.dispatcher.Bind(t, fn)
	return nil
}

// CapabilityVersion returns the hash of the declared capabilities,
// freezing the registry on first call.
func (r *Robot) CapabilityVersion() string {
	return r.registry.Version()
}

// Name returns the robot's display name.
func (r *Robot) Name() string { return r.cfg.Robot.Name }

// Address returns the robot's wave address.
func (r *Robot) Address() string { return r.cfg.Robot.Address }

// Client returns the active-API client, built lazily so the capability
// version is frozen no earlier than first outbound use.
func (r *Robot) Client() *rpc.Client {
	r.clientOnce.Do(func() {
		creds := make(map[string]rpc.Credential, len(r.cfg.Credentials))
		for _, c := range r.cfg.Credentials {
			creds[c.RPCServerURL] = rpc.Credential{
				ConsumerKey:    c.ConsumerKey,
				ConsumerSecret: c.ConsumerSecret,
			}
		}
		r.client = rpc.NewClient(r.fetcher, ProtocolVersion,
			r.registry.Version(), creds, r.logger, r.metrics)
	})
	return r.client
}

// Submit sends a wavelet's pending operations to the gateway it was
// fetched from or decoded against.
func (r *Robot) Submit(ctx context.Context, w *wave.Wavelet, rpcURL string) ([]rpc.Response, error) {
	return r.Client().Submit(ctx, w.OperationQueue(), rpcURL)
}

// FetchWavelet retrieves a wavelet snapshot from an active gateway.
func (r *Robot) FetchWavelet(ctx context.Context, waveID, waveletID, proxyFor, rpcURL string) (*wave.Wavelet, error) {
	return r.Client().FetchWavelet(ctx, waveID, waveletID, proxyFor, rpcURL)
}

// NewWave creates a wave. With a non-empty rpcURL it is created
// immediately; otherwise creation rides along with the next Submit.
func (r *Robot) NewWave(ctx context.Context, domain string, participants []string, message, proxyFor, rpcURL string) (*wave.Wavelet, error) {
	return r.Client().NewWave(ctx, domain, participants, message, proxyFor, rpcURL)
}

// BlindWavelet builds an operation-only mirror of a wavelet the robot
// has no snapshot of.
func (r *Robot) BlindWavelet(waveID, waveletID, proxyFor string) *wave.Wavelet {
	return r.Client().BlindWavelet(waveID, waveletID, proxyFor)
}
