package app

import (
	"context"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"taxtree/internal/adapters"
	"taxtree/internal/core"
	"taxtree/internal/types"
)

// LoadTree opens the provider input, builds the tree with the effective
// options and writes the build report when a path is given.
func (s Service) LoadTree(ctx context.Context, req TreeRequest) (TreeResult, error) {
	profile, err := adapters.LookupProviderProfile(req.Provider)
	if err != nil {
		return TreeResult{}, err
	}
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return TreeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("input is required")
	}
	opts := EffectiveOptions(profile, req)
	if err := core.ValidateOptions(opts); err != nil {
		return TreeResult{}, err
	}

	source, err := s.Sources.Open(ctx, req.Provider, input, opts.RootID)
	if err != nil {
		return TreeResult{}, err
	}
	if opts.RootID == "" {
		opts.RootID = source.RootID()
	}
	builder, err := core.NewBuilder(opts)
	if err != nil {
		return TreeResult{}, err
	}
	started := time.Now()
	tree, diag, err := builder.Build(ctx, source)
	if err != nil {
		return TreeResult{}, err
	}
	stats := tree.Stats()
	log.Ctx(ctx).Info().
		Str("provider", string(req.Provider)).
		Str("input", input).
		Int("nodes", stats.Nodes).
		Dur("elapsed", time.Since(started)).
		Msg("tree loaded")

	result := TreeResult{
		Tree:        tree,
		Profile:     profile,
		Options:     opts,
		Diagnostics: diag,
		Stats:       stats,
	}
	if path := strings.TrimSpace(req.ReportPath); path != "" {
		report := types.BuildReport{
			Provider:    req.Provider,
			Input:       input,
			Options:     opts,
			Diagnostics: diag,
			Stats:       stats,
			CreatedAt:   s.now().UTC().Format(time.RFC3339),
		}
		if err := s.Reports.WriteReport(path, report); err != nil {
			return TreeResult{}, err
		}
		result.ReportPath = path
	}
	return result, nil
}

// EffectiveOptions overlays the explicit request options on the provider
// profile.
func EffectiveOptions(profile types.ProviderProfile, req TreeRequest) types.BuildOptions {
	opts := profile.Options
	if root := strings.TrimSpace(req.RootID); root != "" {
		opts.RootID = root
	}
	if req.OrphanPolicy != "" {
		opts.OrphanPolicy = req.OrphanPolicy
	}
	if req.DuplicatePolicy != "" {
		opts.DuplicatePolicy = req.DuplicatePolicy
	}
	if req.SynthesizeRoot != nil {
		opts.SynthesizeRoot = *req.SynthesizeRoot
	}
	return opts
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s Service) Providers() []types.ProviderProfile {
	return adapters.ProviderProfiles()
}
