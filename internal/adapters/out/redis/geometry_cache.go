package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const geometryKeyPrefix = "replenishment:geometry:"

type cachedSequence struct {
	Order           []int     `json:"order"`
	TotalDistanceKm float64   `json:"totalDistanceKm"`
	TotalDurationNs int64     `json:"totalDurationNs"`
	LegDistancesKm  []float64 `json:"legDistancesKm"`
	LegDurationsNs  []int64   `json:"legDurationsNs"`
}

// GeometryCache decorates a RouteGeometryProvider with a Redis read-through
// cache keyed by the provider name, the origin and the ordered waypoint
// coordinates. Cache failures fall through to the provider.
type GeometryCache struct {
	next   ports.RouteGeometryProvider
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewGeometryCache(next ports.RouteGeometryProvider, rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *GeometryCache {
	return &GeometryCache{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With("component", "geometry_cache"),
	}
}

func (c *GeometryCache) Name() string { return c.next.Name() }

func (c *GeometryCache) Sequence(ctx context.Context, origin *kernel.GeoPoint, waypoints []ports.Waypoint) (route.Sequence, error) {
	key := c.key(origin, waypoints)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedSequence
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && len(cached.Order) == len(waypoints) {
			return cached.toSequence(), nil
		}
		c.logger.WarnContext(ctx, "dropping unreadable cached geometry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "geometry cache read failed", "error", err)
	}

	seq, err := c.next.Sequence(ctx, origin, waypoints)
	if err != nil {
		return route.Sequence{}, err
	}

	payload, err := json.Marshal(fromSequence(seq))
	if err == nil {
		err = c.rdb.Set(context.WithoutCancel(ctx), key, payload, c.ttl).Err()
	}
	if err != nil {
		c.logger.WarnContext(ctx, "geometry cache write failed", "error", err)
	}

	return seq, nil
}

func (c *GeometryCache) key(origin *kernel.GeoPoint, waypoints []ports.Waypoint) string {
	var b strings.Builder
	b.WriteString(c.next.Name())
	if origin != nil {
		fmt.Fprintf(&b, "|o:%.6f,%.6f", origin.Lat(), origin.Lon())
	}
	for _, w := range waypoints {
		fmt.Fprintf(&b, "|%.6f,%.6f", w.Location.Lat(), w.Location.Lon())
	}
	sum := sha256.Sum256([]byte(b.String()))
	return geometryKeyPrefix + hex.EncodeToString(sum[:])
}

func fromSequence(seq route.Sequence) cachedSequence {
	out := cachedSequence{
		Order:           seq.Order,
		TotalDistanceKm: seq.TotalDistanceKm,
		TotalDurationNs: int64(seq.TotalDuration),
		LegDistancesKm:  seq.LegDistancesKm,
		LegDurationsNs:  make([]int64, len(seq.LegDurations)),
	}
	for i, d := range seq.LegDurations {
		out.LegDurationsNs[i] = int64(d)
	}
	return out
}

func (c cachedSequence) toSequence() route.Sequence {
	seq := route.Sequence{
		Order:           c.Order,
		TotalDistanceKm: c.TotalDistanceKm,
		TotalDuration:   time.Duration(c.TotalDurationNs),
		LegDistancesKm:  c.LegDistancesKm,
		LegDurations:    make([]time.Duration, len(c.LegDurationsNs)),
	}
	for i, ns := range c.LegDurationsNs {
		seq.LegDurations[i] = time.Duration(ns)
	}
	return seq
}
