package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gexftool/pkg/cache"
	"github.com/matzehuels/gexftool/pkg/dynamic"
	"github.com/matzehuels/gexftool/pkg/errors"
	"github.com/matzehuels/gexftool/pkg/gexf"
	"github.com/matzehuels/gexftool/pkg/graph"
	"github.com/matzehuels/gexftool/pkg/httputil"
	"github.com/matzehuels/gexftool/pkg/observability"
	"github.com/matzehuels/gexftool/pkg/render/nodelink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Fetcher *httputil.Fetcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: httputil.NewFetcher(),
	}
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cachedDocument is the cache form of a decoded document.
type cachedDocument struct {
	Graph  graph.Document `json:"graph"`
	Events dynamic.Stream `json:"events"`
}

// ReadSource reads a document from a local path or an http(s) URL.
func (r *Runner) ReadSource(ctx context.Context, source string, refresh bool) (*ReadResult, error) {
	if !httputil.IsURL(source) {
		return r.ReadFile(ctx, source, refresh)
	}
	r.Logger.Debug("fetching document", "url", source)
	data, err := r.Fetcher.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	return r.Read(ctx, source, data, refresh)
}

// ReadFile reads and decodes the GEXF file at path.
func (r *Runner) ReadFile(ctx context.Context, path string, refresh bool) (*ReadResult, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return r.Read(ctx, path, data, refresh)
}

// Read decodes GEXF bytes. source names the input in logs and hooks.
// Decoded documents are cached by content hash unless refresh is set.
func (r *Runner) Read(ctx context.Context, source string, data []byte, refresh bool) (*ReadResult, error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnReadStart(ctx, source)

	hash := cache.Hash(data)
	key := r.Keyer.DocumentKey(hash)

	if !refresh {
		if doc, ok := r.cachedDocument(ctx, key); ok {
			doc.Hash = hash
			res := &ReadResult{Document: doc, Stats: Summarize(doc), CacheHit: true}
			res.Stats.ReadTime = time.Since(start)
			r.Logger.Debug("document cache hit", "source", source, "hash", hash[:12])
			hooks.OnReadComplete(ctx, source, res.Stats.Nodes, res.Stats.Events, res.Stats.ReadTime, nil)
			return res, nil
		}
	}

	g, s, err := gexf.ReadBytes(data)
	if err != nil {
		hooks.OnReadComplete(ctx, source, 0, 0, time.Since(start), err)
		return nil, err
	}
	doc := &Document{Graph: g, Events: s, Hash: hash}

	if !refresh {
		cached, err := json.Marshal(cachedDocument{Graph: graph.ToDocument(g), Events: s})
		if err == nil {
			if err := r.Cache.Set(ctx, key, cached, cache.TTLDocument); err != nil {
				r.Logger.Warn("cache write failed", "key", key, "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "document", len(cached))
			}
		}
	}

	res := &ReadResult{Document: doc, Stats: Summarize(doc)}
	res.Stats.ReadTime = time.Since(start)
	r.Logger.Info("read document",
		"source", source,
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"events", res.Stats.Events,
		"steps", res.Stats.Steps,
		"duration", res.Stats.ReadTime)
	hooks.OnReadComplete(ctx, source, res.Stats.Nodes, res.Stats.Events, res.Stats.ReadTime, nil)
	return res, nil
}

func (r *Runner) cachedDocument(ctx context.Context, key string) (*Document, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "document")
		return nil, false
	}
	var cd cachedDocument
	if err := json.Unmarshal(data, &cd); err != nil {
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	g, err := graph.FromDocument(cd.Graph)
	if err != nil {
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "document")
	return &Document{Graph: g, Events: cd.Events}, true
}

// Encode returns the GEXF encoding of doc.
func (r *Runner) Encode(ctx context.Context, doc *Document) ([]byte, error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnWriteStart(ctx, "memory", len(doc.Events))

	data, err := gexf.Marshal(doc.Graph, doc.Events)
	hooks.OnWriteComplete(ctx, "memory", time.Since(start), err)
	return data, err
}

// WriteFile writes doc to path as GEXF, replacing path atomically.
func (r *Runner) WriteFile(ctx context.Context, path string, doc *Document) error {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnWriteStart(ctx, path, len(doc.Events))

	err := gexf.Export(path, doc.Graph, doc.Events)
	hooks.OnWriteComplete(ctx, path, time.Since(start), err)
	if err != nil {
		return err
	}
	r.Logger.Info("wrote document",
		"target", path,
		"nodes", doc.Graph.UpperNodeIDBound()+doc.Events.Count(dynamic.NodeAddition),
		"events", len(doc.Events),
		"duration", time.Since(start))
	return nil
}

// Convert reads in and writes it back to out. The output uses step
// ordinals as times and canonical ids.
func (r *Runner) Convert(ctx context.Context, in, out string) (*ReadResult, error) {
	res, err := r.ReadSource(ctx, in, false)
	if err != nil {
		return nil, err
	}
	if err := r.WriteFile(ctx, out, res.Document); err != nil {
		return nil, err
	}
	return res, nil
}

// Replay returns the graph state after step time steps along with the
// node ids touched in that step.
func (r *Runner) Replay(doc *Document, step int) (*graph.Graph, []int, error) {
	g, err := dynamic.Replay(doc.Graph, doc.Events, step)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeState, err, "replay to step %d", step)
	}
	return g, touched(doc.Events, step), nil
}

// touched lists the nodes referenced by the events of segment step, or of
// the last segment when step is negative or past the end.
func touched(s dynamic.Stream, step int) []int {
	segs := s.Segments()
	if len(segs) == 0 {
		return nil
	}
	if step < 0 || step >= len(segs) {
		step = len(segs) - 1
	}
	seen := make(map[int]bool)
	var out []int
	add := func(u int) {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	for _, e := range segs[step] {
		add(e.U)
		if e.Kind.IsEdge() {
			add(e.V)
		}
	}
	return out
}

// Snapshot renders the graph state after opts.Step time steps.
// Rendered output is cached per document hash and options.
func (r *Runner) Snapshot(ctx context.Context, doc *Document, opts SnapshotOptions) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "snapshot options")
	}

	var key string
	if doc.Hash != "" {
		key = r.Keyer.SnapshotKey(doc.Hash, cache.SnapshotKeyOpts{Step: opts.Step, Format: opts.Format})
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "snapshot")
				return data, nil
			}
			observability.Cache().OnCacheMiss(ctx, "snapshot")
		}
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format, opts.Step)

	out, err := r.render(ctx, doc, opts)
	hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("rendered snapshot",
		"step", opts.Step,
		"format", opts.Format,
		"bytes", len(out),
		"duration", time.Since(start))

	if key != "" {
		if err := r.Cache.Set(ctx, key, out, cache.TTLSnapshot); err == nil {
			observability.Cache().OnCacheSet(ctx, "snapshot", len(out))
		}
	}
	return out, nil
}

func (r *Runner) render(ctx context.Context, doc *Document, opts SnapshotOptions) ([]byte, error) {
	g, highlight, err := r.Replay(doc, opts.Step)
	if err != nil {
		return nil, err
	}
	title := "final state"
	if opts.Step >= 0 && opts.Step <= doc.Events.Steps() {
		title = "step " + strconv.Itoa(opts.Step)
	}
	dot := nodelink.ToDOT(g, nodelink.Options{Title: title, Weights: opts.Weights, Highlight: highlight})

	switch opts.Format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return wrapRender(nodelink.RenderSVG(ctx, dot))
	case FormatPNG:
		return wrapRender(nodelink.RenderPNG(ctx, dot))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "format %q", opts.Format)
	}
}

func wrapRender(out []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return out, nil
}

// FormatEvents writes one event per line, with a header line per segment.
func FormatEvents(s dynamic.Stream) string {
	var buf bytes.Buffer
	for i, seg := range s.Segments() {
		fmt.Fprintf(&buf, "step %d (%d events)\n", i, len(seg))
		for _, e := range seg {
			fmt.Fprintf(&buf, "  %s\n", e)
		}
	}
	return buf.String()
}
