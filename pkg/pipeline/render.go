package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/plangraph/pkg/cache"
	pgio "github.com/matzehuels/plangraph/pkg/io"
	"github.com/matzehuels/plangraph/pkg/observability"
	"github.com/matzehuels/plangraph/pkg/plangraph"
	"github.com/matzehuels/plangraph/pkg/planning"
	"github.com/matzehuels/plangraph/pkg/render/nodelink"
)

// RenderOptions selects the output of [Runner.Render].
type RenderOptions struct {
	Format      string  `json:"format"`
	ShowMutexes bool    `json:"show_mutexes,omitempty"`
	HideNoOps   bool    `json:"hide_noops,omitempty"`
	MaxLevel    int     `json:"max_level,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

func (o RenderOptions) nodelink() nodelink.Options {
	return nodelink.Options{ShowMutexes: o.ShowMutexes, HideNoOps: o.HideNoOps, MaxLevel: o.MaxLevel}
}

// Render builds the planning graph for p and renders it in ropts.Format.
// It reports whether the artifact came from the cache.
func (r *Runner) Render(ctx context.Context, p *planning.Problem, opts Options, ropts RenderOptions) ([]byte, bool, error) {
	if err := ValidateFormat(ropts.Format); err != nil {
		return nil, false, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash, err := ProblemHash(p)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.ArtifactKey(hash, r.state(p, opts), cache.ArtifactKeyOpts{
		Format:      ropts.Format,
		ShowMutexes: ropts.ShowMutexes,
		HideNoOps:   ropts.HideNoOps,
		MaxLevel:    ropts.MaxLevel,
		Serialize:   !opts.Parallel,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
	}

	g, err := r.Build(ctx, p, opts)
	if err != nil {
		return nil, false, err
	}
	data, err := RenderGraph(ctx, g, p.Name, ropts)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
	}
	r.Logger.Debug("rendered planning graph", "problem", p.Name, "format", ropts.Format, "bytes", len(data))
	return data, false, nil
}

// RenderGraph renders an already built graph without caching.
func RenderGraph(ctx context.Context, g *plangraph.Graph, name string, ropts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(ropts.Format); err != nil {
		return nil, err
	}
	if ropts.Format == FormatJSON {
		var buf bytes.Buffer
		if err := pgio.WriteGraphJSON(g, name, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	dot := nodelink.ToDOT(g, ropts.nodelink())
	switch ropts.Format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		scale := ropts.Scale
		if scale == 0 {
			scale = 2.0
		}
		return nodelink.RenderPNG(ctx, dot, scale)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return []byte(dot), nil
}
