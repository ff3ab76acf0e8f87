// Package geometry contains the OpenRouteService client used to order route
// stops. The optimization endpoint solves a single-vehicle problem over the
// stops and returns the visiting order with cumulative distances and
// durations.
package geometry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.openrouteservice.org"
	DefaultProfile = "driving-hgv"
)

// Config configures the ORS client. RequestsPerSecond <= 0 disables
// throttling.
type Config struct {
	APIKey            string
	BaseURL           string
	Profile           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// ORSProvider implements ports.RouteGeometryProvider. It is safe for
// concurrent use.
type ORSProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	limiter *rate.Limiter
}

func NewORSProvider(cfg Config) (*ORSProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &ORSProvider{
		session: &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		profile: cfg.Profile,
		limiter: limiter,
	}, nil
}

func (o *ORSProvider) Name() string { return "openrouteservice" }

type optimizationJob struct {
	ID       int       `json:"id"`
	Location []float64 `json:"location"`
}

type optimizationVehicle struct {
	ID      int       `json:"id"`
	Profile string    `json:"profile"`
	Start   []float64 `json:"start,omitempty"`
}

type optimizationRequest struct {
	Jobs     []optimizationJob     `json:"jobs"`
	Vehicles []optimizationVehicle `json:"vehicles"`
	Options  map[string]bool       `json:"options"`
}

type optimizationStep struct {
	Type     string   `json:"type"`
	Job      int      `json:"job"`
	Distance *float64 `json:"distance"`
	Duration float64  `json:"duration"`
}

type optimizationRoute struct {
	Distance *float64           `json:"distance"`
	Duration float64            `json:"duration"`
	Steps    []optimizationStep `json:"steps"`
}

type optimizationResponse struct {
	Code       int                 `json:"code"`
	Error      string              `json:"error"`
	Routes     []optimizationRoute `json:"routes"`
	Unassigned []struct {
		ID int `json:"id"`
	} `json:"unassigned"`
}

// Sequence asks the optimization endpoint for the visiting order. Job ids are
// waypoint indexes plus one. Leg distances and durations are derived from the
// cumulative values of consecutive job steps; the first leg starts at the
// origin, or has length zero when there is none.
func (o *ORSProvider) Sequence(ctx context.Context, origin *kernel.GeoPoint, waypoints []ports.Waypoint) (seq route.Sequence, err error) {
	ctx, span := tracing.Start(ctx, "ORSProvider.Sequence", attribute.Int("waypoints", len(waypoints)))
	defer tracing.End(span, &err)

	if len(waypoints) == 0 {
		return route.Sequence{}, errors.New("no waypoints to sequence")
	}

	body := optimizationRequest{
		Jobs:     make([]optimizationJob, len(waypoints)),
		Vehicles: []optimizationVehicle{{ID: 1, Profile: o.profile}},
		Options:  map[string]bool{"g": true},
	}
	for i, w := range waypoints {
		body.Jobs[i] = optimizationJob{ID: i + 1, Location: lonLat(w.Location)}
	}
	if origin != nil {
		body.Vehicles[0].Start = lonLat(*origin)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return route.Sequence{}, fmt.Errorf("marshal optimization request: %w", err)
	}

	if err = o.limiter.Wait(ctx); err != nil {
		return route.Sequence{}, fmt.Errorf("wait for rate limiter: %w", err)
	}

	endpoint := o.baseURL + "/optimization"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return route.Sequence{}, fmt.Errorf("optimization request failed: %w", err)
	}
	defer resp.Body.Close()

	var res optimizationResponse
	if err = json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return route.Sequence{}, fmt.Errorf("decode optimization response: %w", err)
	}

	return toSequence(res, len(waypoints))
}

func toSequence(res optimizationResponse, n int) (route.Sequence, error) {
	if res.Code != 0 {
		return route.Sequence{}, fmt.Errorf("optimization code %d: %s", res.Code, res.Error)
	}
	if len(res.Unassigned) > 0 {
		return route.Sequence{}, fmt.Errorf("optimization left %d jobs unassigned", len(res.Unassigned))
	}
	if len(res.Routes) != 1 {
		return route.Sequence{}, fmt.Errorf("expected 1 route; got %d", len(res.Routes))
	}

	r := res.Routes[0]
	seq := route.Sequence{
		Order:          make([]int, 0, n),
		TotalDuration:  seconds(r.Duration),
		LegDistancesKm: make([]float64, 0, n),
		LegDurations:   make([]time.Duration, 0, n),
	}

	prevDistance, prevDuration := 0.0, 0.0
	for _, step := range r.Steps {
		if step.Type != "job" {
			continue
		}
		if step.Job < 1 || step.Job > n {
			return route.Sequence{}, fmt.Errorf("optimization returned unknown job %d", step.Job)
		}
		if step.Distance == nil {
			return route.Sequence{}, errors.New("optimization returned steps without distance")
		}

		seq.Order = append(seq.Order, step.Job-1)
		seq.LegDistancesKm = append(seq.LegDistancesKm, (*step.Distance-prevDistance)/1000)
		seq.LegDurations = append(seq.LegDurations, seconds(step.Duration-prevDuration))
		prevDistance, prevDuration = *step.Distance, step.Duration
	}

	if r.Distance != nil {
		seq.TotalDistanceKm = *r.Distance / 1000
	} else {
		seq.TotalDistanceKm = prevDistance / 1000
	}

	return seq, nil
}

func lonLat(p kernel.GeoPoint) []float64 {
	return []float64{p.Lon(), p.Lat()}
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s)) * time.Second
}
