// Package status builds the read-only health, provider and credential views.
package status

import (
	"context"
	"errors"
	"time"

	"github.com/nulzo/llm-relay/internal/httpclient"
	"github.com/nulzo/llm-relay/internal/llm"
	"github.com/nulzo/llm-relay/internal/store/cache"
	"github.com/nulzo/llm-relay/pkg/api"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const probeKeyPrefix = "status:probe:"

type Options struct {
	Environment string

	// LiveProbe checks connectivity of configured providers instead of trusting
	// credential presence alone.
	LiveProbe        bool
	ProbeTimeout     time.Duration
	ProbeConcurrency int
	CacheTTL         time.Duration

	Now func() time.Time
}

type Reporter struct {
	registry *llm.Registry
	client   httpclient.HTTPClient
	cache    cache.CacheService
	logger   *zap.Logger
	opts     Options
}

func NewReporter(registry *llm.Registry, client httpclient.HTTPClient, c cache.CacheService, logger *zap.Logger, opts Options) *Reporter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 3 * time.Second
	}
	if opts.ProbeConcurrency <= 0 {
		opts.ProbeConcurrency = 4
	}
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &Reporter{
		registry: registry,
		client:   client,
		cache:    c,
		logger:   logger,
		opts:     opts,
	}
}

// Health never fails and never calls out.
func (r *Reporter) Health() api.HealthReport {
	providers := make(map[string]bool)
	for _, a := range r.registry.Adapters() {
		providers[a.ID()] = r.registry.HasCredential(a)
	}
	return api.HealthReport{
		Status:      "ok",
		Timestamp:   r.opts.Now().UTC().Format(time.RFC3339),
		Environment: r.opts.Environment,
		Providers:   providers,
	}
}

// Providers lists every registered provider in table order.
func (r *Reporter) Providers(ctx context.Context) []api.ProviderStatus {
	adapters := r.registry.Adapters()
	out := make([]api.ProviderStatus, len(adapters))

	for i, a := range adapters {
		configured := r.registry.HasCredential(a)
		out[i] = api.ProviderStatus{
			ID:         a.ID(),
			Name:       a.Name(),
			Configured: configured,
			Status:     statusOf(configured),
		}
	}

	if !r.opts.LiveProbe {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.ProbeConcurrency)

	for i, a := range adapters {
		prober, ok := a.(llm.Prober)
		if !ok || !out[i].Configured {
			continue
		}
		g.Go(func() error {
			// probe failures only affect this provider's row
			out[i].Status = statusOf(r.probe(gctx, a, prober))
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (r *Reporter) probe(ctx context.Context, a llm.Adapter, prober llm.Prober) bool {
	key := probeKeyPrefix + a.ID()

	// the result is shared through the cache, so a caller that hung up must not cut it short
	ctx = context.WithoutCancel(ctx)

	var online bool
	err := r.cache.Get(ctx, key, &online)
	if err == nil {
		return online
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("Probe cache read failed", zap.String("provider", a.ID()), zap.Error(err))
	}

	pctx, cancel := context.WithTimeout(ctx, r.opts.ProbeTimeout)
	defer cancel()

	if err := prober.Probe(pctx, r.client, r.registry.Key(a)); err != nil {
		r.logger.Debug("Provider probe failed", zap.String("provider", a.ID()), zap.Error(err))
		online = false
	} else {
		online = true
	}

	if r.opts.CacheTTL > 0 {
		if err := r.cache.Set(ctx, key, online, r.opts.CacheTTL); err != nil {
			r.logger.Warn("Probe cache write failed", zap.String("provider", a.ID()), zap.Error(err))
		}
	}
	return online
}

// Credentials returns masked previews for every provider that reads a key.
func (r *Reporter) Credentials() map[string]api.CredentialPreview {
	out := make(map[string]api.CredentialPreview)
	for _, a := range r.registry.Adapters() {
		cred := a.Credential()
		if cred.Env == "" {
			continue
		}
		key := r.registry.Key(a)
		preview := api.CredentialPreview{
			Configured: key != "",
			EnvVar:     cred.Env,
		}
		if key != "" {
			masked := Mask(key)
			preview.KeyPreview = &masked
		}
		out[a.ID()] = preview
	}
	return out
}

// Mask keeps the first 8 and last 4 characters of keys long enough that
// the preview still hides part of the key.
func Mask(key string) string {
	if len(key) <= 12 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

func statusOf(online bool) string {
	if online {
		return api.StatusOnline
	}
	return api.StatusOffline
}
