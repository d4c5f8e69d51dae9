package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"taxtree/internal/adapters"
	"taxtree/internal/ports"
)

// Fetch downloads the provider files, defaulting to the profile URLs.
func (s Service) Fetch(ctx context.Context, req FetchRequest) (FetchResult, error) {
	profile, err := adapters.LookupProviderProfile(req.Provider)
	if err != nil {
		return FetchResult{}, err
	}
	urls := req.URLs
	if len(urls) == 0 {
		urls = profile.URLs
	}
	if len(urls) == 0 {
		return FetchResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("provider " + string(req.Provider) + " has no download location; pass urls explicitly")
	}
	dir := strings.TrimSpace(req.Dir)
	if dir == "" {
		return FetchResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("fetch directory is required")
	}
	paths, err := s.Fetcher.Fetch(ctx, ports.FetchRequest{
		URLs:         urls,
		Dir:          dir,
		TimeoutSec:   req.TimeoutSec,
		Retries:      req.Retries,
		RetryDelayMs: req.RetryDelayMs,
		SkipExisting: !req.Force,
	})
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Paths: paths, Input: strings.Join(paths, ",")}, nil
}
