// Package piston dispatches programs to a Piston compatible code execution service.
package piston

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codequest",
		Subsystem: "piston",
		Name:      "dispatch_duration_seconds",
		Help:      "Duration of execution service round trips",
		Buckets:   prometheus.DefBuckets,
	}, []string{"language"})

	dispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codequest",
		Subsystem: "piston",
		Name:      "dispatch_failures_total",
		Help:      "Number of dispatches that could not obtain an execution result",
	}, []string{"language"})
)

// Dispatcher sends a single program to the execution service.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) (Outcome, error)
}

// Request describes one program run.
type Request struct {
	Source   string
	Stdin    string
	Language string
	Version  string
}

// Outcome is the normalised result of a run that reached the execution service.
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Signal   string
	Stage    string
}

// Stage names reported in Outcome.Stage.
const (
	StageRun     = "run"
	StageCompile = "compile"
)

// DispatchError reports that no execution result could be obtained.
type DispatchError struct {
	Reason string
	Err    error
}

func (e *DispatchError) Error() string {
	return e.Reason
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// IsDispatchError reports whether err is a *DispatchError.
func IsDispatchError(err error) bool {
	var dispatchErr *DispatchError
	return errors.As(err, &dispatchErr)
}

// Config groups execution service settings.
type Config struct {
	URL            string
	CompileTimeout time.Duration
	RunTimeout     time.Duration
	RunMemoryLimit int64
	HTTPTimeout    time.Duration
	Retries        int
	Logger         zerolog.Logger
}

// Client implements Dispatcher against the Piston HTTP API.
type Client struct {
	http   *resty.Client
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewClient constructs a Piston backed dispatcher.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("piston url is required")
	}

	if cfg.CompileTimeout <= 0 {
		cfg.CompileTimeout = 10 * time.Second
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 3 * time.Second
	}
	if cfg.RunMemoryLimit == 0 {
		cfg.RunMemoryLimit = -1
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = cfg.CompileTimeout + cfg.RunTimeout + 10*time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	httpClient := resty.New().
		SetTimeout(cfg.HTTPTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.Retries > 0 {
		httpClient.
			SetRetryCount(cfg.Retries).
			SetRetryWaitTime(250 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(func(resp *resty.Response, err error) bool {
				if err != nil || resp == nil {
					return true
				}
				return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
			})
	}

	return &Client{
		http:   httpClient,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/code-quest-api/pkg/piston"),
		logger: logger.With().Str("component", "piston_client").Logger(),
	}, nil
}

// Dispatch runs req once on the execution service. Every failure to obtain a result is
// returned as a *DispatchError.
func (c *Client) Dispatch(parent context.Context, req Request) (Outcome, error) {
	language := strings.ToLower(strings.TrimSpace(req.Language))

	ctx, span := c.tracer.Start(parent, "piston.dispatch", trace.WithAttributes(
		attribute.String("piston.language", language),
		attribute.String("piston.version", req.Version),
	))
	defer span.End()

	payload := executeRequest{
		Language: language,
		Version:  req.Version,
		Files: []file{
			{Name: SourceFileName(language), Content: req.Source},
		},
		Stdin:          req.Stdin,
		Args:           []string{},
		CompileTimeout: c.cfg.CompileTimeout.Milliseconds(),
		RunTimeout:     c.cfg.RunTimeout.Milliseconds(),
		RunMemoryLimit: c.cfg.RunMemoryLimit,
	}

	var result executeResponse
	var failure executeResponse

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		SetError(&failure).
		ForceContentType("application/json").
		Post(c.cfg.URL)
	dispatchDuration.WithLabelValues(language).Observe(time.Since(start).Seconds())

	if err != nil {
		reason := "execution service unreachable"
		if resp != nil && resp.StatusCode() != 0 {
			reason = statusReason(resp.StatusCode(), "")
			if isSuccess(resp.StatusCode()) {
				reason = "execution service returned an unreadable response"
			}
		}
		return Outcome{}, c.fail(span, language, &DispatchError{Reason: reason, Err: err})
	}

	if status := resp.StatusCode(); !isSuccess(status) {
		return Outcome{}, c.fail(span, language, &DispatchError{Reason: statusReason(status, failure.Message)})
	}

	outcome := result.outcome()
	span.SetAttributes(attribute.Int("piston.exit_code", outcome.ExitCode))
	c.logger.Debug().
		Str("language", language).
		Int("exit_code", outcome.ExitCode).
		Str("stage", outcome.Stage).
		Msg("execution finished")

	return outcome, nil
}

func (c *Client) fail(span trace.Span, language string, err *DispatchError) error {
	dispatchFailures.WithLabelValues(language).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Reason)

	event := c.logger.Warn().Str("language", language)
	if err.Err != nil {
		event = event.Err(err.Err)
	}
	event.Msg(err.Reason)

	return err
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func statusReason(status int, message string) string {
	reason := fmt.Sprintf("execution service returned status %d", status)
	if message = strings.TrimSpace(message); message != "" {
		reason = fmt.Sprintf("%s: %s", reason, message)
	}
	return reason
}

var sourceExtensions = map[string]string{
	"python":     "py",
	"python3":    "py",
	"javascript": "js",
	"typescript": "ts",
	"go":         "go",
	"java":       "java",
	"c":          "c",
	"c++":        "cpp",
	"cpp":        "cpp",
	"rust":       "rs",
	"ruby":       "rb",
}

// SourceFileName returns the file name the submitted source is uploaded under.
func SourceFileName(language string) string {
	if ext, ok := sourceExtensions[strings.ToLower(strings.TrimSpace(language))]; ok {
		return "solution." + ext
	}
	return "solution"
}
