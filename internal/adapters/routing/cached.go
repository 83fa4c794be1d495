package routing

import (
	"context"
	"fmt"
	"route-watch-service/internal/domain"
	"route-watch-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CachingProvider serves traffic-free lookups from a RouteCache.
// Traffic-aware lookups always reach the wrapped provider.
type CachingProvider struct {
	inner  ports.RouteProvider
	cache  ports.RouteCache
	ttl    time.Duration
	logger logrus.FieldLogger
}

func NewCachingProvider(
	inner ports.RouteProvider,
	cache ports.RouteCache,
	ttl time.Duration,
	logger logrus.FieldLogger,
) *CachingProvider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachingProvider{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachingProvider) GetRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResponse, error) {
	if !req.AvoidTraffic {
		return c.inner.GetRoute(ctx, req)
	}

	key := RequestKey(req)
	log := c.logger.WithField("cache_key", key)

	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.WithError(err).Warn("route cache read failed")
	} else if ok {
		log.Debug("route cache hit")
		return cached, nil
	}

	resp, err := c.inner.GetRoute(ctx, req)
	if err != nil {
		return domain.RouteResponse{}, err
	}

	if err := c.cache.Put(ctx, key, resp, c.ttl); err != nil {
		log.WithError(err).Warn("route cache write failed")
	}

	return resp, nil
}

func (c *CachingProvider) GetOptimalRoute(ctx context.Context, start, end domain.Coordinate) (domain.RouteResponse, error) {
	return c.GetRoute(ctx, domain.RouteRequest{Start: start, End: end, AvoidTraffic: true})
}

// RequestKey is the canonical cache key of a request: every coordinate rounded
// to six decimals, in order, plus the traffic mode.
func RequestKey(req domain.RouteRequest) string {
	var b strings.Builder

	mode := "traffic"
	if req.AvoidTraffic {
		mode = "free"
	}
	b.WriteString(mode)

	write := func(c domain.Coordinate) {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(c.Lat, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(c.Lon, 'f', 6, 64))
	}

	write(req.Start)
	for _, wp := range req.Waypoints {
		write(wp)
	}
	write(req.End)

	return fmt.Sprintf("v1:%s", b.String())
}
