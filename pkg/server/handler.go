package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/prerender/internal/config"
	"github.com/vango-dev/prerender/internal/errors"
	"github.com/vango-dev/prerender/pkg/assets"
	"github.com/vango-dev/prerender/pkg/render"
	"github.com/vango-dev/prerender/pkg/root"
	"github.com/vango-dev/prerender/pkg/router"
	"github.com/vango-dev/prerender/pkg/store"
)

const tracerName = "github.com/vango-dev/prerender/pkg/server"

// Pipeline is the reloadable part of the handler setup.
type Pipeline struct {
	// Routes builds the route tree for a request store.
	Routes router.RoutesFunc

	// Middleware resolves the per-request store middleware. It is called
	// on every request so configuration reloads take effect immediately.
	Middleware func() ([]store.Middleware, error)

	// Reducer overrides the factory reducer when set.
	Reducer store.Reducer

	// Root renders the matched routes.
	Root root.Renderer

	// Providers are the provider names wrapped around the root.
	Providers []string

	Document render.Document
}

func (p Pipeline) validate() error {
	if p.Routes == nil {
		return fmt.Errorf("server: pipeline has no routes function")
	}
	if p.Root == nil {
		return fmt.Errorf("server: pipeline has no root renderer")
	}
	return nil
}

// Options configures a Handler.
type Options struct {
	Flags    config.Flags
	Stores   *store.Factory
	Assets   *assets.Tools
	Pipeline Pipeline
	Observer Observer
	Logger   *slog.Logger

	// ErrorOutput receives pretty-printed errors in development.
	// Defaults to os.Stderr.
	ErrorOutput io.Writer
}

// Handler serves server-rendered pages.
type Handler struct {
	flags    config.Flags
	stores   *store.Factory
	assets   *assets.Tools
	observer Observer
	logger   *slog.Logger
	errOut   io.Writer
	tracer   trace.Tracer

	pipeline atomic.Pointer[Pipeline]
}

// New creates a Handler.
func New(opts Options) (*Handler, error) {
	if opts.Stores == nil {
		return nil, fmt.Errorf("server: store factory is required")
	}
	if err := opts.Pipeline.validate(); err != nil {
		return nil, err
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ErrorOutput == nil {
		opts.ErrorOutput = os.Stderr
	}

	h := &Handler{
		flags:    opts.Flags,
		stores:   opts.Stores,
		assets:   opts.Assets,
		observer: opts.Observer,
		logger:   opts.Logger,
		errOut:   opts.ErrorOutput,
		tracer:   otel.Tracer(tracerName),
	}
	p := opts.Pipeline
	h.pipeline.Store(&p)
	return h, nil
}

// SetPipeline replaces the pipeline used by subsequent requests.
func (h *Handler) SetPipeline(p Pipeline) error {
	if err := p.validate(); err != nil {
		return err
	}
	h.pipeline.Store(&p)
	return nil
}

// Pipeline returns the current pipeline.
func (h *Handler) Pipeline() Pipeline {
	return *h.pipeline.Load()
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome, status := h.serve(r.Context(), w, r)
	d := time.Since(start)

	h.observer.ObserveOutcome(outcome, status, d)
	h.logger.Log(r.Context(), outcome.level(), "request served",
		"method", r.Method,
		"path", r.URL.Path,
		"outcome", outcome.String(),
		"status", status,
		"duration", d,
	)
}

func (h *Handler) serve(ctx context.Context, w http.ResponseWriter, r *http.Request) (outcome Outcome, status int) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.New("E106").
				WithDetail(fmt.Sprintf("panic: %v", rec)).
				WithStack(debug.Stack())
			outcome, status = h.renderFailed(w, r, err)
		}
	}()

	p := h.pipeline.Load()

	if h.flags.Development && h.assets != nil {
		_, end := h.stage(ctx, StageRefresh)
		err := h.assets.Refresh(ctx)
		end(err)
		if err != nil {
			h.logger.Warn("asset refresh failed, serving last known assets", "error", err)
		}
	}

	var extra []store.Middleware
	if p.Middleware != nil {
		mws, err := p.Middleware()
		if err != nil {
			return h.failed(w, r, err)
		}
		extra = mws
	}

	rawURL := requestPath(r)
	initial := store.State{}
	if loc, err := store.ParseLocation(rawURL); err == nil {
		initial[store.RoutingKey] = store.RoutingState(loc)
	}

	st := h.stores.Create(extra, p.Reducer, initial)
	defer h.stores.Release(st)

	if h.flags.DisableSSR {
		html, err := h.assemble(ctx, p, st, w.Header(), nil)
		if err != nil {
			return h.renderFailed(w, r, err)
		}
		writeHTML(w, html)
		return OutcomeShell, http.StatusOK
	}

	mctx, end := h.stage(ctx, StageMatch)
	result := router.Match(mctx, p.Routes(st), rawURL, st)
	end(result.Err)

	switch result.Kind {
	case router.KindRedirect:
		w.Header().Set("Location", result.Redirect.String())
		w.WriteHeader(http.StatusFound)
		return OutcomeRedirect, http.StatusFound

	case router.KindError:
		return h.failed(w, r, result.Err)

	case router.KindNotFound:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "Not found")
		return OutcomeNotFound, http.StatusNotFound
	}

	rctx, end := h.stage(ctx, StageRender)
	markup, err := p.Root.RenderRoot(rctx, st, result.Props, p.Providers)
	end(err)
	if err != nil {
		return h.renderFailed(w, r, err)
	}

	s := string(markup)
	html, err := h.assemble(ctx, p, st, w.Header(), &s)
	if err != nil {
		return h.renderFailed(w, r, err)
	}
	writeHTML(w, html)
	return OutcomeRendered, http.StatusOK
}

func (h *Handler) assemble(ctx context.Context, p *Pipeline, st *store.Store, headers http.Header, markup *string) (string, error) {
	_, end := h.stage(ctx, StageAssemble)
	var a assets.Assets
	if h.assets != nil {
		a = h.assets.Assets()
	}
	html, err := render.Assemble(p.Document, a, st.GetState(), headers, markup)
	end(err)
	return html, err
}

// stage starts a span for a pipeline step. The returned func ends it and
// reports the step duration.
func (h *Handler) stage(ctx context.Context, s Stage) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := h.tracer.Start(ctx, "prerender."+string(s),
		trace.WithAttributes(attribute.String("prerender.stage", string(s))),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		h.observer.ObserveStage(s, time.Since(start))
	}
}

// failed answers an opaque 500 for errors raised before rendering.
func (h *Handler) failed(w http.ResponseWriter, r *http.Request, err error) (Outcome, int) {
	h.report(r, "request failed", err)
	w.WriteHeader(http.StatusInternalServerError)
	return OutcomeError, http.StatusInternalServerError
}

// renderFailed answers 500 with the error payload.
func (h *Handler) renderFailed(w http.ResponseWriter, r *http.Request, err error) (Outcome, int) {
	h.report(r, "render failed", err)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, Payload(err, h.flags.Development))
	return OutcomeRenderFailed, http.StatusInternalServerError
}

func (h *Handler) report(r *http.Request, msg string, err error) {
	h.logger.Error(msg, "path", r.URL.Path, "code", errors.Code(err), "error", err)
	if h.flags.Development {
		_, _ = io.WriteString(h.errOut, errors.Pretty(err))
	}
}

// Payload is the response body for a failed render. Production exposes the
// error code and message only; development exposes the full report.
func Payload(err error, development bool) string {
	e := errors.FromError(err, "E101")
	if development {
		return e.Plain()
	}
	return e.Code + ": " + e.Message
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, html)
}

// requestPath is the escaped path and query of r. It never includes a
// host, even for paths starting with "//".
func requestPath(r *http.Request) string {
	p := r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		p += "?" + r.URL.RawQuery
	}
	return p
}
