package engine

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/loziogigio/omnicommerce/pkg/errors"
)

var searchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "catalogue_search_duration_seconds",
		Help:    "Duration of search index calls",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	},
	[]string{"engine", "outcome"},
)

const upstreamName = "search index"

// Instrumented decorates an Engine with a per-call deadline, a span and
// duration metrics. Errors are classified into apperrors.Timeout when the
// deadline expired and apperrors.Unavailable otherwise.
type Instrumented struct {
	next    Engine
	timeout time.Duration
	tracer  trace.Tracer
}

// Instrument wraps next. A non-positive timeout disables the deadline.
func Instrument(next Engine, timeout time.Duration) *Instrumented {
	return &Instrumented{
		next:    next,
		timeout: timeout,
		tracer:  otel.Tracer("github.com/loziogigio/omnicommerce/internal/engine"),
	}
}

func (e *Instrumented) Name() string { return e.next.Name() }

// Search runs the wrapped Search under the configured deadline.
func (e *Instrumented) Search(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	ctx, span := e.tracer.Start(ctx, "search.execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("search.engine", e.next.Name()),
			attribute.String("search.query", req.Query.String()),
			attribute.Int("search.start", req.Start),
			attribute.Int("search.rows", req.Rows),
		),
	)
	defer span.End()

	start := time.Now()
	res, err := e.next.Search(ctx, req)
	err = classify(ctx, err)
	searchDuration.WithLabelValues(e.next.Name(), outcome(err)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.total", res.Total))
	return res, nil
}

// Ping runs the wrapped Ping under the configured deadline.
func (e *Instrumented) Ping(ctx context.Context) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return classify(ctx, e.next.Ping(ctx))
}

func (e *Instrumented) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Timeout(upstreamName, err)
	}
	return apperrors.Unavailable(upstreamName, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
