package checkin

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/platform/logging"
	"github.com/riskibarqy/team-balancer/internal/platform/resilience"
	"github.com/riskibarqy/team-balancer/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxResponseBodySize = 6 << 20

var errCheckinTransient = crerr.New("checkin transient failure")

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches checked-in rosters from the check-in service.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	token          string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	retryDelay     func(attempt int) time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "team-balancer/checkin",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
			MaxResponseBodySize: maxResponseBodySize,
		}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		retryDelay: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * time.Second
		},
	}
}

// FetchRoster returns the raw check-in entries for an organization on a
// given date. Entries come back unvalidated; normalization happens in
// the roster domain.
func (c *Client) FetchRoster(ctx context.Context, orgID, runDate string) ([]roster.Entry, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("org id is required")
	}
	runDate = strings.TrimSpace(runDate)
	if runDate == "" {
		return nil, fmt.Errorf("run date is required")
	}

	path := "/v1/orgs/" + url.PathEscape(orgID) + "/checkins"
	query := map[string]string{"date": runDate}

	var envelope checkinEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch checkins org_id=%s date=%s: %w", orgID, runDate, err)
	}

	entries := make([]roster.Entry, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		entries = append(entries, roster.Entry{
			ID:           strings.TrimSpace(item.PlayerID),
			Name:         strings.TrimSpace(item.Name),
			Skill:        item.Skill,
			Age:          item.Age,
			MainPosition: item.MainPosition,
			AltPosition:  item.AltPosition,
		})
	}

	c.logger.InfoContext(ctx, "checkin roster fetched", "org_id", orgID, "date", runDate, "player_count", len(entries))
	return entries, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "checkin circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: check-in service is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	baseURL, err := validateHTTPBaseURL(c.baseURL)
	if err != nil {
		return fmt.Errorf("%w: invalid CHECKIN_BASE_URL: %v", usecase.ErrDependencyUnavailable, err)
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	curlPreview := buildCurlPreview(fullURL, c.token != "")
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("checkin.url", fullURL),
			attribute.String("checkin.request_curl_preview", curlPreview),
		)
	}
	c.logger.InfoContext(ctx, "checkin fetch request", "url", fullURL, "curl_preview", curlPreview)

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCheckinCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		if stderrors.Is(err, errCheckinTransient) {
			return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode check-in payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// fasthttp carries no context; honor cancellation between attempts.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, status, err := c.requestOnce(ctx, fullURL)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errCheckinTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else if status >= 200 && status < 300 {
			return raw, nil
		} else if isRetryableStatus(status) {
			lastErr = fmt.Errorf("%w: check-in status=%d body=%s", errCheckinTransient, status, abbreviateBody(raw))
		} else {
			return nil, fmt.Errorf("check-in status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(c.retryDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("check-in request failed")
	}
	c.logger.WarnContext(ctx, "checkin request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) requestOnce(ctx context.Context, fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.token)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}

	// resp.Body() points at pooled memory; copy before release.
	raw := append([]byte(nil), resp.Body()...)
	return raw, resp.StatusCode(), nil
}

type checkinEnvelope struct {
	Data []checkinItem `json:"data"`
}

type checkinItem struct {
	PlayerID     string `json:"player_id"`
	Name         string `json:"name"`
	Skill        int    `json:"skill"`
	Age          int    `json:"age"`
	MainPosition string `json:"main_position"`
	AltPosition  string `json:"alt_position"`
}

func isCheckinCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errCheckinTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusRequestTimeout ||
		code == fasthttp.StatusTooManyRequests ||
		code >= fasthttp.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func buildCurlPreview(fullURL string, withAuth bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart(shellQuote(fullURL))
	appendPart("-H")
	appendPart(shellQuote("Accept: application/json"))
	if withAuth {
		appendPart("-H")
		appendPart(shellQuote("Authorization: Bearer ***"))
	}

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}
