// Package httpcache is the HTTP cache proxy (spec §4.1): every outbound
// HTTP request and filesystem URL read flows through Proxy, which
// coalesces concurrent requests per URL, caches GET/HEAD independently
// with distinct success/error TTLs, and enforces robots.txt.
package httpcache

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/librovore/librovore/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Proxy is the single entry point for all outbound retrieval. It is
// process-wide and safe for concurrent use (spec §3.2, §5).
type Proxy struct {
	cfg    Config
	client *http.Client

	probes   *ProbeCache
	contents *ContentCache
	robots   *RobotsCache

	// probeGroup/retrieveGroup implement per-URL request coalescing
	// (spec §4.1): at most one in-flight network call per URL, with
	// waiters re-checking the cache under the singleflight lock on
	// return - this replaces the "lock-per-URL map" design note and
	// sidesteps its unbounded-memory hazard (singleflight releases a
	// key's entry once its call completes and no one is waiting).
	probeGroup    singleflight.Group
	retrieveGroup singleflight.Group

	// nowFn is overridable in tests for deterministic TTL-boundary checks.
	nowFn func() time.Time
}

// NewProxy constructs a Proxy with the given configuration.
func NewProxy(cfg Config) *Proxy {
	return &Proxy{
		cfg:    cfg,
		client: &http.Client{},
		probes: NewProbeCache(cfg.ProbeMaxEntries, cfg.ProbeSuccessTTL, cfg.ProbeErrorTTL, cfg.ProbeSuccessTTL),
		contents: NewContentCache(cfg.ContentMaxBytes,
			cfg.ContentSuccessTTL, cfg.ContentErrorTTL, cfg.ContentNetworkTTL),
		robots: NewRobotsCache(cfg.RobotsMaxEntries, cfg.RobotsTTL, cfg.UserAgent),
		nowFn:  time.Now,
	}
}

func (p *Proxy) now() time.Time { return p.nowFn() }

// RetrieveResult is the outcome of a successful Retrieve.
type RetrieveResult struct {
	Bytes       []byte
	ContentType string
	URL         string
}

// Text decodes Bytes using the declared Content-Type charset, falling
// back to UTF-8 when the charset is absent or unrecognized. It first
// checks ContentType against the text allow-list (spec §4.1, §7): a
// binary asset served where a documentation page was expected fails
// with ContentTypeInvalidError rather than being decoded as garbled
// text.
func (r RetrieveResult) Text() (string, error) {
	if base := baseMIMEType(r.ContentType); base != "" && !textContentTypeAllowList[base] {
		return "", domain.NewContentTypeInvalidError(r.URL, r.ContentType)
	}
	return decodeText(r.Bytes, r.ContentType)
}

// isFileURL reports whether rawURL addresses the local filesystem
// (either an explicit file:// URL or a bare path).
func isFileURL(rawURL string) (string, bool) {
	if strings.HasPrefix(rawURL, "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return rawURL, true
		}
		return u.Path, true
	}
	if strings.Contains(rawURL, "://") {
		return "", false
	}
	return rawURL, true
}

// Probe reports whether the resource exists: HEAD semantics for HTTP,
// os.Stat for files.
func (p *Proxy) Probe(ctx context.Context, rawURL string) (bool, error) {
	if path, ok := isFileURL(rawURL); ok {
		return p.probeFile(rawURL, path)
	}
	return p.probeHTTP(ctx, rawURL)
}

func (p *Proxy) probeFile(cacheKey, path string) (bool, error) {
	now := p.now()
	if entry, ok := p.probes.Get(cacheKey, now); ok {
		if entry.Result.Failure {
			return false, entry.Result.Err
		}
		return entry.Result.Value, nil
	}
	_, err := os.Stat(path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		p.probes.PutFailure(cacheKey, err, false, now)
		return false, err
	}
	p.probes.PutSuccess(cacheKey, exists, now)
	return exists, nil
}

func (p *Proxy) probeHTTP(ctx context.Context, rawURL string) (bool, error) {
	now := p.now()
	if entry, ok := p.probes.Get(rawURL, now); ok {
		if entry.Result.Failure {
			return false, entry.Result.Err
		}
		return entry.Result.Value, nil
	}

	v, err, _ := p.probeGroup.Do(rawURL, func() (any, error) {
		if entry, ok := p.probes.Get(rawURL, p.now()); ok {
			if entry.Result.Failure {
				return false, entry.Result.Err
			}
			return entry.Result.Value, nil
		}
		return p.doProbeHTTP(ctx, rawURL)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (p *Proxy) doProbeHTTP(ctx context.Context, rawURL string) (bool, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return false, domain.NewSourceInvalidError(rawURL, err)
	}
	if err := p.checkRobots(ctx, target); err != nil {
		return false, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := p.client.Do(req)
	now := p.now()
	if err != nil {
		netErr := domain.NewNetworkFailureError(rawURL, err)
		p.probes.PutFailure(rawURL, netErr, true, now)
		return false, netErr
	}
	resp.Body.Close()

	exists := resp.StatusCode >= 200 && resp.StatusCode < 300
	if resp.StatusCode >= 400 {
		httpErr := domain.NewHTTPRequestFailureError(resp.StatusCode, rawURL)
		p.probes.PutFailure(rawURL, httpErr, false, now)
		return false, httpErr
	}
	p.probes.PutSuccess(rawURL, exists, now)
	return exists, nil
}

// Retrieve fetches contents, coalescing concurrent callers for the same
// URL into a single in-flight request.
func (p *Proxy) Retrieve(ctx context.Context, rawURL string) (RetrieveResult, error) {
	if path, ok := isFileURL(rawURL); ok {
		return p.retrieveFile(rawURL, path)
	}
	return p.retrieveHTTP(ctx, rawURL)
}

func (p *Proxy) retrieveFile(cacheKey, path string) (RetrieveResult, error) {
	now := p.now()
	if entry, ok := p.contents.Get(cacheKey, now); ok {
		if entry.Result.Failure {
			return RetrieveResult{}, entry.Result.Err
		}
		return RetrieveResult{Bytes: entry.Result.Value.Bytes, ContentType: entry.Result.Value.ContentType, URL: cacheKey}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		var kindErr error
		if os.IsNotExist(err) {
			kindErr = domain.NewHTTPRequestFailureError(404, cacheKey)
		} else {
			kindErr = domain.NewNetworkFailureError(cacheKey, err)
		}
		p.contents.PutFailure(cacheKey, kindErr, os.IsNotExist(err) == false, now)
		return RetrieveResult{}, kindErr
	}

	payload := ContentPayload{Bytes: data, ContentType: detectContentType(path, data)}
	p.contents.PutSuccess(cacheKey, payload, now)
	return RetrieveResult{Bytes: payload.Bytes, ContentType: payload.ContentType, URL: cacheKey}, nil
}

func (p *Proxy) retrieveHTTP(ctx context.Context, rawURL string) (RetrieveResult, error) {
	now := p.now()
	if entry, ok := p.contents.Get(rawURL, now); ok {
		if entry.Result.Failure {
			return RetrieveResult{}, entry.Result.Err
		}
		return RetrieveResult{Bytes: entry.Result.Value.Bytes, ContentType: entry.Result.Value.ContentType, URL: rawURL}, nil
	}

	v, err, _ := p.retrieveGroup.Do(rawURL, func() (any, error) {
		if entry, ok := p.contents.Get(rawURL, p.now()); ok {
			if entry.Result.Failure {
				return RetrieveResult{}, entry.Result.Err
			}
			return RetrieveResult{Bytes: entry.Result.Value.Bytes, ContentType: entry.Result.Value.ContentType, URL: rawURL}, nil
		}
		return p.doRetrieveHTTP(ctx, rawURL)
	})
	if err != nil {
		return RetrieveResult{}, err
	}
	return v.(RetrieveResult), nil
}

func (p *Proxy) doRetrieveHTTP(ctx context.Context, rawURL string) (RetrieveResult, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return RetrieveResult{}, domain.NewSourceInvalidError(rawURL, err)
	}
	if err := p.checkRobots(ctx, target); err != nil {
		return RetrieveResult{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.RetrieveTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return RetrieveResult{}, err
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := p.client.Do(req)
	now := p.now()
	if err != nil {
		netErr := domain.NewNetworkFailureError(rawURL, err)
		p.contents.PutFailure(rawURL, netErr, true, now)
		return RetrieveResult{}, netErr
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		httpErr := domain.NewHTTPRequestFailureError(resp.StatusCode, rawURL)
		p.contents.PutFailure(rawURL, httpErr, false, now)
		return RetrieveResult{}, httpErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(p.cfg.ContentMaxBytes)))
	if err != nil {
		netErr := domain.NewNetworkFailureError(rawURL, err)
		p.contents.PutFailure(rawURL, netErr, true, now)
		return RetrieveResult{}, netErr
	}

	payload := ContentPayload{Bytes: body, ContentType: resp.Header.Get("Content-Type")}
	p.contents.PutSuccess(rawURL, payload, now)
	return RetrieveResult{Bytes: payload.Bytes, ContentType: payload.ContentType, URL: rawURL}, nil
}
