package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"taxtree/internal/ports"
)

const defaultFetchWorkers = 4
const defaultHTTPTimeout = 10 * time.Minute
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second

type httpRetryConfig struct {
	timeout   time.Duration
	retries   int
	baseDelay time.Duration
}

func normalizeHTTPConfig(timeoutSec int, retries int, delayMs int) httpRetryConfig {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	retryCount := retries
	if retryCount <= 0 {
		retryCount = defaultHTTPRetries
	}
	baseDelay := time.Duration(delayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = defaultHTTPRetryDelay
	}
	return httpRetryConfig{
		timeout:   timeout,
		retries:   retryCount,
		baseDelay: baseDelay,
	}
}

// HTTPFetchAdapter downloads provider files. Each file is written to a
// temporary name and renamed once complete.
type HTTPFetchAdapter struct {
	Workers int
}

func NewHTTPFetchAdapter() HTTPFetchAdapter {
	return HTTPFetchAdapter{Workers: defaultFetchWorkers}
}

func (a HTTPFetchAdapter) Fetch(ctx context.Context, request ports.FetchRequest) ([]string, error) {
	if len(request.URLs) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no urls to fetch")
	}
	if request.Dir == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("fetch directory is empty")
	}
	if err := os.MkdirAll(request.Dir, 0755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create fetch directory").
			WithCause(err)
	}
	cfg := normalizeHTTPConfig(request.TimeoutSec, request.Retries, request.RetryDelayMs)
	workers := a.Workers
	if workers <= 0 {
		workers = defaultFetchWorkers
	}

	paths := make([]string, len(request.URLs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, rawURL := range request.URLs {
		dest, err := destinationFor(request.Dir, rawURL)
		if err != nil {
			return nil, err
		}
		paths[i] = dest
		if request.SkipExisting {
			if _, err := os.Stat(dest); err == nil {
				log.Ctx(ctx).Debug().Str("path", dest).Msg("fetch skipped, file exists")
				continue
			}
		}
		group.Go(func() error {
			return download(groupCtx, rawURL, dest, cfg)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func destinationFor(dir string, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid url: " + rawURL)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "/" || name == "." {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("url has no file name: " + rawURL)
	}
	return filepath.Join(dir, name), nil
}

func download(ctx context.Context, rawURL string, dest string, cfg httpRetryConfig) error {
	started := time.Now()
	resp, err := doRequest(ctx, rawURL, cfg)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		code := errbuilder.CodeInternal
		if resp.StatusCode == http.StatusNotFound {
			code = errbuilder.CodeNotFound
		}
		return errbuilder.New().
			WithCode(code).
			WithMsg(fmt.Sprintf("fetch %s: unexpected status %d", rawURL, resp.StatusCode))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return writeError(dest, err)
	}
	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to download " + rawURL).
			WithCause(err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return writeError(dest, err)
	}
	log.Ctx(ctx).Info().
		Str("url", rawURL).
		Str("path", dest).
		Int64("bytes", written).
		Dur("elapsed", time.Since(started)).
		Msg("fetched")
	return nil
}

func doRequest(ctx context.Context, rawURL string, cfg httpRetryConfig) (*http.Response, error) {
	client := &http.Client{Timeout: cfg.timeout}
	var lastErr error
	for attempt := 0; attempt < cfg.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request canceled").
				WithCause(ctx.Err())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create request").
				WithCause(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("request canceled").
					WithCause(ctx.Err())
			}
			lastErr = err
			if attempt < cfg.retries-1 {
				time.Sleep(httpRetryDelay(attempt, cfg))
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request failed").
				WithCause(err)
		}
		if (resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests) && attempt < cfg.retries-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			log.Ctx(ctx).Debug().Str("url", rawURL).Int("status", resp.StatusCode).Int("attempt", attempt+1).Msg("retrying request")
			time.Sleep(httpRetryDelay(attempt, cfg))
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("request failed").
		WithCause(lastErr)
}

func httpRetryDelay(attempt int, cfg httpRetryConfig) time.Duration {
	delay := cfg.baseDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

var _ ports.FetchPort = HTTPFetchAdapter{}
