package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nulzo/llm-relay/internal/analytics"
	"github.com/nulzo/llm-relay/internal/httpclient"
	"github.com/nulzo/llm-relay/internal/llm"
	"github.com/nulzo/llm-relay/internal/platform/otel"
	"github.com/nulzo/llm-relay/internal/store"
	"github.com/nulzo/llm-relay/internal/store/model"
	"github.com/nulzo/llm-relay/pkg/api"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultUpstreamTimeout = 30 * time.Second

// Service relays one chat request to the selected provider.
type Service interface {
	// Chat returns the assistant reply, or an *api.Error describing the failure.
	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResult, error)
}

type Options struct {
	UpstreamTimeout time.Duration
	Now             func() time.Time
}

type service struct {
	logger   *zap.Logger
	registry *llm.Registry
	client   httpclient.HTTPClient
	ingestor analytics.Ingestor
	tracer   trace.Tracer
	timeout  time.Duration
	now      func() time.Time
}

func NewService(logger *zap.Logger, registry *llm.Registry, client httpclient.HTTPClient, ingestor analytics.Ingestor, opts Options) Service {
	if opts.UpstreamTimeout <= 0 {
		opts.UpstreamTimeout = defaultUpstreamTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if ingestor == nil {
		ingestor = analytics.NewNoopIngestor()
	}
	return &service{
		logger:   logger,
		registry: registry,
		client:   client,
		ingestor: ingestor,
		tracer:   otel.Tracer(),
		timeout:  opts.UpstreamTimeout,
		now:      opts.Now,
	}
}

func (s *service) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResult, error) {
	start := s.now()
	adapter := s.registry.Resolve(req.Provider)

	ctx, span := s.tracer.Start(ctx, "chat.dispatch", trace.WithAttributes(
		attribute.String("relay.provider", adapter.ID()),
		attribute.String("relay.requested_provider", req.Provider),
		attribute.Int("relay.messages", len(req.Messages)),
	))
	defer span.End()

	result, err := s.dispatch(ctx, adapter, req)

	status := http.StatusOK
	var apiErr *api.Error
	if err != nil {
		if !errors.As(err, &apiErr) {
			apiErr = api.InternalError(err, api.WithProvider(adapter.ID()))
			err = apiErr
		}
		status = apiErr.Status
		span.RecordError(err)
		span.SetStatus(codes.Error, apiErr.Message)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	s.record(ctx, adapter, req, status, apiErr, start)
	return result, err
}

func (s *service) dispatch(ctx context.Context, adapter llm.Adapter, req *api.ChatRequest) (*api.ChatResult, error) {
	if len(req.Messages) == 0 {
		return nil, api.BadRequestError("messages must be a non-empty array")
	}

	if !s.registry.HasCredential(adapter) {
		return nil, api.UnauthorizedError(
			fmt.Sprintf("API key required for %s. Set the %s environment variable.", adapter.Name(), adapter.Credential().Env),
			api.WithProvider(adapter.ID()),
		)
	}

	switch a := adapter.(type) {
	case llm.InlineAdapter:
		result, err := a.Handle(ctx, req.Messages, req.Options)
		if err != nil {
			return nil, api.InternalError(err, api.WithProvider(a.ID()))
		}
		return result, nil
	case llm.HTTPAdapter:
		return s.callUpstream(ctx, a, req)
	default:
		return nil, api.InternalError(fmt.Errorf("provider %s defines no call path", adapter.ID()))
	}
}

// callUpstream performs exactly one POST; there is no retry.
func (s *service) callUpstream(ctx context.Context, a llm.HTTPAdapter, req *api.ChatRequest) (*api.ChatResult, error) {
	key := s.registry.Key(a)

	payload, err := a.FormatRequest(req.Messages, req.Options)
	if err != nil {
		return nil, api.InternalError(err, api.WithProvider(a.ID()))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := httpclient.SendRequest(ctx, s.client, http.MethodPost, a.Endpoint(key), a.Headers(key), payload)
	if err != nil {
		return nil, upstreamFailure(a, err)
	}

	result, err := a.FormatResponse(body)
	if err != nil {
		return nil, api.InternalError(err, api.WithProvider(a.ID()))
	}
	return result, nil
}

func upstreamFailure(a llm.Adapter, err error) *api.Error {
	var upErr *httpclient.UpstreamError
	var tErr *httpclient.TransportError

	switch {
	case errors.As(err, &upErr):
		msg := fmt.Sprintf("%s API error: %d", a.Name(), upErr.StatusCode)
		if upErr.StatusCode == http.StatusUnauthorized {
			msg = fmt.Sprintf("Authentication failed for %s. Please check your API key.", a.Name())
		}
		return api.UpstreamError(upErr.StatusCode, msg, string(upErr.Body), api.WithProvider(a.ID()), api.WithLog(err))
	case errors.As(err, &tErr):
		return api.UnavailableError(fmt.Sprintf("Network error with %s", a.Name()), err, api.WithProvider(a.ID()))
	default:
		return api.InternalError(err, api.WithProvider(a.ID()))
	}
}

func (s *service) record(ctx context.Context, adapter llm.Adapter, req *api.ChatRequest, status int, apiErr *api.Error, start time.Time) {
	latency := s.now().Sub(start)

	id := store.RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}

	entry := &model.RequestLog{
		ID:                id,
		ProviderID:        adapter.ID(),
		RequestedProvider: req.Provider,
		StatusCode:        status,
		LatencyMS:         latency.Milliseconds(),
		MessageCount:      len(req.Messages),
		CreatedAt:         start,
	}

	fields := []zap.Field{
		zap.String("request_id", id),
		zap.String("provider", adapter.ID()),
		zap.Int("status", status),
		zap.Duration("latency", latency),
	}
	if req.Provider != "" && req.Provider != adapter.ID() {
		fields = append(fields, zap.String("requested_provider", req.Provider))
	}

	switch {
	case apiErr == nil:
		s.logger.Info("Chat relayed", fields...)
	case status >= http.StatusInternalServerError:
		entry.ErrorMessage = apiErr.Message
		s.logger.Error("Chat failed", append(fields, zap.String("error", apiErr.Message), zap.NamedError("cause", apiErr.Log))...)
	default:
		entry.ErrorMessage = apiErr.Message
		s.logger.Warn("Chat rejected", append(fields, zap.String("error", apiErr.Message))...)
	}

	s.ingestor.Log(entry)
}
