package bbref

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://www.basketball-reference.com/"

var tracer = otel.Tracer("bbref.fetch")

// Getter is the one network capability the pipeline needs.
type Getter interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

type HTTPOptions struct {
	Timeout   time.Duration
	UserAgent string
	// RequestsPerMinute adds per-request pacing on top of the batch
	// cooldown; 0 disables it.
	RequestsPerMinute int
}

// HTTPGetter performs plain GETs. It never retries.
type HTTPGetter struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func NewHTTPGetter(opts HTTPOptions) *HTTPGetter {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = ua
	}
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9")

	g := &HTTPGetter{client: client}
	if opts.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1)
	}
	return g
}

func (g *HTTPGetter) Get(ctx context.Context, url string) (int, []byte, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	resp, err := g.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), resp.Body(), nil
}

// -------------------- outcomes --------------------

type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeNotAvailable
	OutcomeTransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeNotAvailable:
		return "not_available"
	default:
		return "transport_error"
	}
}

// Outcome is the result of one season/category request. Table is set only
// for OutcomeOK; Err carries a *TransportError or a *StageError otherwise.
type Outcome struct {
	Kind     OutcomeKind
	Category Category
	Season   int
	URL      string
	Status   int
	Table    *Table
	Err      error
}

// -------------------- fetcher --------------------

type Fetcher struct {
	Getter  Getter
	BaseURL string
	Logger  *slog.Logger
}

func NewFetcher(g Getter, baseURL string, logger *slog.Logger) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{Getter: g, BaseURL: baseURL, Logger: logger}
}

// Fetch requests one season of one category and runs the parse chain on the
// response. Seasons before the category floor never reach the network.
func (f *Fetcher) Fetch(ctx context.Context, c Category, season int) Outcome {
	d := c.Descriptor()
	out := Outcome{Category: c, Season: season, URL: d.URL(f.BaseURL, season)}
	if !d.Available(season) {
		out.Kind = OutcomeNotAvailable
		return out
	}

	ctx, span := tracer.Start(ctx, "Fetch", trace.WithAttributes(
		attribute.String("category", d.Name),
		attribute.Int("season", season),
		attribute.String("url", out.URL),
	))
	defer span.End()

	status, body, err := f.Getter.Get(ctx, out.URL)
	out.Status = status
	if err != nil {
		return f.fail(span, out, &TransportError{URL: out.URL, Err: err})
	}
	if status != http.StatusOK {
		return f.fail(span, out, &TransportError{URL: out.URL, Status: status})
	}

	table, err := Parse(body, c, season)
	if err != nil {
		return f.fail(span, out, err)
	}
	f.Logger.Debug("parsed season table", "category", d.Name, "season", season, "rows", len(table.Rows), "columns", len(table.Columns))
	out.Kind = OutcomeOK
	out.Table = table
	return out
}

func (f *Fetcher) fail(span trace.Span, out Outcome, err error) Outcome {
	span.RecordError(err)
	span.SetStatus(codes.Error, "season fetch failed")
	out.Kind = OutcomeTransportError
	out.Err = err
	return out
}

// Parse runs Extract, Normalize and Reconcile for one page. Errors come back
// as *StageError naming the stage that failed.
func Parse(body []byte, c Category, season int) (*Table, error) {
	d := c.Descriptor()
	raw, err := Extract(body, d.Shape, d.TableID)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	norm, err := Normalize(raw, c)
	if err != nil {
		return nil, &StageError{Stage: StageNormalize, Err: err}
	}
	norm.Season = season
	table, err := Reconcile(norm)
	if err != nil {
		return nil, &StageError{Stage: StageReconcile, Err: err}
	}
	return table, nil
}
