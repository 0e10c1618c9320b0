package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/MrEthical07/blogClient/internal/metrics"
	"github.com/google/uuid"
)

const (
	hdrAccept          = "Accept"
	hdrWWWAuthenticate = "WWW-Authenticate"
	hdrRequestID       = "X-Request-ID"

	mimeJSON     = "application/json"
	bearerPrefix = "Bearer "

	maxBodySize = 8 << 20
)

// TokenSource yields the current bearer token, or "" when there is none.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Failure is handed to the ErrorHandler once per final failed request.
type Failure struct {
	Err *Error
	// Public is true when the request was sent without requiring a token.
	Public bool
	// Rejected is true when the request never left the client.
	Rejected bool
	// Token is the token the request carried.
	Token string
}

// ErrorHandler applies the effects of a failure.
type ErrorHandler interface {
	HandleError(ctx context.Context, f Failure)
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc func(ctx context.Context, f Failure)

func (f ErrorHandlerFunc) HandleError(ctx context.Context, fl Failure) { f(ctx, fl) }

// Options tune a single Send call.
type Options struct {
	// Public sends the request without a token and without requiring one.
	Public bool
	// Quiet suppresses the ErrorHandler for this request.
	Quiet bool
	// NoRetry disables retries even for idempotent methods.
	NoRetry bool
	// Token overrides the TokenSource and is sent even on public requests.
	Token   string
	Query   url.Values
	Headers http.Header
}

// Response is a successful backend response.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
	Attempts  int
}

// Decode unmarshals the response into v, unwrapping a {code, message, data}
// envelope when present. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	body := bytes.TrimSpace(r.Body)
	if len(body) == 0 || v == nil {
		return nil
	}
	if env, ok := parseEnvelope(body); ok && env.Code != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		body = env.Data
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Deps are the collaborators of a Gateway. Every field is optional.
type Deps struct {
	HTTPClient *http.Client
	Tokens     TokenSource
	Handler    ErrorHandler
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Gateway sends requests to the blog backend.
type Gateway struct {
	cfg     Config
	base    *url.URL
	client  *http.Client
	tokens  TokenSource
	handler ErrorHandler
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New validates cfg and returns a Gateway.
func New(cfg Config, deps Deps) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", ErrInvalidConfig, err)
	}

	g := &Gateway{
		cfg:     cfg,
		base:    base,
		client:  deps.HTTPClient,
		tokens:  deps.Tokens,
		handler: deps.Handler,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		now:     time.Now,
	}
	if g.client == nil {
		g.client = &http.Client{Timeout: cfg.Timeout}
	}
	if g.tokens == nil {
		g.tokens = TokenFunc(func() string { return "" })
	}
	if g.logger == nil {
		g.logger = slogutil.NewDiscardLogger()
	}
	return g, nil
}

// SetHandler replaces the ErrorHandler. It must be called before the first Send.
func (g *Gateway) SetHandler(h ErrorHandler) {
	g.handler = h
}

// SetTokenSource replaces the TokenSource. It must be called before the first Send.
func (g *Gateway) SetTokenSource(ts TokenSource) {
	if ts != nil {
		g.tokens = ts
	}
}

// BaseURL returns the configured API base.
func (g *Gateway) BaseURL() string {
	return g.base.String()
}

// Get is Send with GET and no body.
func (g *Gateway) Get(ctx context.Context, path string, opts Options) (*Response, error) {
	return g.Send(ctx, http.MethodGet, path, nil, opts)
}

// Post is Send with POST.
func (g *Gateway) Post(ctx context.Context, path string, body any, opts Options) (*Response, error) {
	return g.Send(ctx, http.MethodPost, path, body, opts)
}

// Put is Send with PUT.
func (g *Gateway) Put(ctx context.Context, path string, body any, opts Options) (*Response, error) {
	return g.Send(ctx, http.MethodPut, path, body, opts)
}

// Delete is Send with DELETE and no body.
func (g *Gateway) Delete(ctx context.Context, path string, opts Options) (*Response, error) {
	return g.Send(ctx, http.MethodDelete, path, nil, opts)
}

// Send performs one logical request, retrying idempotent failures. The returned
// error is always an *Error.
func (g *Gateway) Send(ctx context.Context, method, path string, body any, opts Options) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(method)
	start := g.now()
	reqID := uuid.NewString()

	// Public endpoints still carry a token when one exists; only Options.Public
	// sends anonymously.
	public := opts.Public || IsPublic(path, method)
	token := opts.Token
	if token == "" && !opts.Public {
		token = g.tokens.Token()
	}
	token = strings.TrimSpace(strings.TrimPrefix(token, bearerPrefix))

	if !public && token == "" {
		gerr := &Error{
			Kind:      UnauthorizedInvalid,
			Message:   "please log in first",
			Method:    method,
			Path:      path,
			RequestID: reqID,
			Err:       ErrNoToken,
		}
		g.metrics.Inc(metrics.RequestRejectedNoToken)
		g.finish(ctx, gerr, Failure{Err: gerr, Rejected: true}, opts, start)
		return nil, gerr
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			gerr := &Error{
				Kind:      BadRequest,
				Message:   "encode request body",
				Method:    method,
				Path:      path,
				RequestID: reqID,
				Err:       err,
			}
			g.finish(ctx, gerr, Failure{Err: gerr, Public: public, Rejected: true, Token: token}, opts, start)
			return nil, gerr
		}
	}

	target := g.resolve(path, opts.Query)
	retry := !opts.NoRetry && idempotent(method)

	var (
		resp     *Response
		final    *Error
		attempts int
	)
	op := func() error {
		attempts++
		r, gerr := g.attempt(ctx, method, target, path, payload, token, reqID, opts.Headers)
		if gerr == nil {
			resp, final = r, nil
			return nil
		}
		final = gerr
		if retry && gerr.Kind.Retryable() && ctx.Err() == nil {
			return gerr
		}
		return permanent(gerr)
	}
	notify := func(err error, wait time.Duration) {
		g.metrics.Inc(metrics.RequestRetry)
		g.logger.DebugContext(ctx, "retrying request",
			"method", method,
			"path", path,
			"attempt", attempts,
			"wait", wait,
			slogutil.KeyError, err,
		)
	}

	_ = g.retry(ctx, op, notify)
	if final != nil {
		final.Attempts = attempts
		g.finish(ctx, final, Failure{Err: final, Public: public, Token: token}, opts, start)
		return nil, final
	}

	resp.Attempts = attempts
	g.metrics.Inc(metrics.RequestSuccess)
	g.metrics.Observe(metrics.RequestLatency, g.now().Sub(start))
	return resp, nil
}

func (g *Gateway) attempt(
	ctx context.Context,
	method, target, path string,
	payload []byte,
	token, reqID string,
	extra http.Header,
) (*Response, *Error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, &Error{Kind: BadRequest, Method: method, Path: path, RequestID: reqID, Err: err}
	}

	if payload != nil {
		req.Header.Set(httphdr.ContentType, mimeJSON)
	}
	req.Header.Set(hdrAccept, mimeJSON)
	req.Header.Set(httphdr.CacheControl, "no-cache")
	req.Header.Set(httphdr.Pragma, "no-cache")
	req.Header.Set(hdrRequestID, reqID)
	if token != "" {
		req.Header.Set(httphdr.Authorization, bearerPrefix+token)
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	httpResp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{
			Kind:      NetworkUnavailable,
			Message:   "network unavailable",
			Method:    method,
			Path:      path,
			RequestID: reqID,
			Err:       err,
		}
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{
			Kind:      NetworkUnavailable,
			Status:    httpResp.StatusCode,
			Method:    method,
			Path:      path,
			RequestID: reqID,
			Err:       fmt.Errorf("read body: %w", err),
		}
	}

	kind := classifyResponse(httpResp.StatusCode, httpResp.Header, data, nil)
	if kind == KindNone {
		return &Response{
			Status:    httpResp.StatusCode,
			Header:    httpResp.Header,
			Body:      data,
			RequestID: reqID,
		}, nil
	}

	return nil, &Error{
		Kind:      kind,
		Status:    statusOf(httpResp.StatusCode, data),
		Message:   messageOf(data),
		Method:    method,
		Path:      path,
		RequestID: reqID,
	}
}

func (g *Gateway) finish(ctx context.Context, gerr *Error, f Failure, opts Options, start time.Time) {
	g.metrics.Inc(metrics.RequestFailure)
	g.metrics.Inc(kindMetric(gerr.Kind))
	g.metrics.Observe(metrics.RequestLatency, g.now().Sub(start))

	g.logger.WarnContext(ctx, "request failed",
		"method", gerr.Method,
		"path", gerr.Path,
		"kind", gerr.Kind.String(),
		"status", gerr.Status,
		"attempts", gerr.Attempts,
		"request_id", gerr.RequestID,
		slogutil.KeyError, gerr,
	)

	if opts.Quiet || g.handler == nil {
		return
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return
	}
	g.handler.HandleError(ctx, f)
}

func (g *Gateway) resolve(path string, query url.Values) string {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		ref = &url.URL{Path: strings.TrimLeft(path, "/")}
	}
	u := *g.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + ref.Path
	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func statusOf(status int, body []byte) int {
	if status >= 200 && status < 300 {
		if env, ok := parseEnvelope(body); ok && env.Code != nil {
			return *env.Code
		}
	}
	return status
}

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func kindMetric(k Kind) metrics.ID {
	switch k {
	case UnauthorizedExpired:
		return metrics.UnauthorizedExpired
	case UnauthorizedInvalid:
		return metrics.UnauthorizedInvalid
	case Forbidden:
		return metrics.Forbidden
	case BadRequest:
		return metrics.BadRequest
	case ServerError:
		return metrics.ServerError
	default:
		return metrics.NetworkUnavailable
	}
}
