package httpcache

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/librovore/librovore/internal/domain"
	"github.com/temoto/robotstxt"
)

// checkRobots enforces spec §4.1's three-step robots.txt compliance
// sequence for one outbound HTTP request: look up (fetching on miss),
// test permission, then apply any requested crawl delay.
func (p *Proxy) checkRobots(ctx context.Context, target *url.URL) error {
	origin := target.Scheme + "://" + target.Host

	data, ok := p.robots.lookup(origin, p.now())
	if !ok {
		fetched, err := p.fetchRobots(ctx, origin)
		if err != nil {
			// Per robotstxt convention, an unreachable/missing
			// robots.txt means "allow all" - cache that outcome too so
			// we don't refetch every call within the TTL window.
			fetched, _ = robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
		}
		p.robots.store(origin, fetched, p.now())
		data, _ = p.robots.lookup(origin, p.now())
	}

	group := data.data.FindGroup(p.cfg.UserAgent)
	if !group.Test(target.Path) {
		return domain.NewAccessDisallowedError(target.String())
	}

	if group.CrawlDelay > 0 {
		wait := group.CrawlDelay - p.now().Sub(data.lastAccess)
		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	p.robots.touch(origin, p.now())
	return nil
}

// fetchRobots retrieves and parses origin/robots.txt directly (bypassing
// ProbeCache/ContentCache - robots fetches are governed solely by
// RobotsCache's own TTL).
func (p *Proxy) fetchRobots(ctx context.Context, origin string) (*robotstxt.RobotData, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.RobotsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, strings.TrimSuffix(origin, "/")+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}
