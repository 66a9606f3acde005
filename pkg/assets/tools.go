package assets

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/prerender/internal/errors"
)

// Tools caches the decoded build stats. It is safe for concurrent use.
type Tools struct {
	source     Source
	publicPath string
	logger     *slog.Logger

	mu      sync.RWMutex
	current Assets
	loaded  bool
}

// NewTools creates Tools reading from source. Nothing is read until Refresh.
func NewTools(source Source, publicPath string, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{
		source:     source,
		publicPath: publicPath,
		logger:     logger,
	}
}

// Refresh re-reads the stats. On failure the previous assets are kept and
// an E130 error is returned.
func (t *Tools) Refresh(ctx context.Context) error {
	t.mu.RLock()
	source, publicPath := t.source, t.publicPath
	t.mu.RUnlock()

	data, err := source.Read(ctx)
	if err != nil {
		return errors.New("E130").
			WithDetail("Reading " + source.String() + " failed.").
			Wrap(err)
	}

	a, err := Decode(data, publicPath)
	if err != nil {
		return errors.New("E130").
			WithDetail(source.String() + " is not valid build stats JSON.").
			Wrap(err)
	}

	t.mu.Lock()
	t.current = a
	t.loaded = true
	t.mu.Unlock()

	t.logger.Debug("assets refreshed",
		"source", source.String(),
		"scripts", len(a.Javascript),
		"styles", len(a.Styles))
	return nil
}

// Retarget switches the source and public path used by later refreshes.
// The loaded assets stay until the next successful Refresh.
func (t *Tools) Retarget(source Source, publicPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.source = source
	t.publicPath = publicPath
}

// Source returns the current stats source.
func (t *Tools) Source() Source {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.source
}

// Assets returns the last successfully loaded stats.
func (t *Tools) Assets() Assets {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Loaded reports whether a Refresh has ever succeeded.
func (t *Tools) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}
