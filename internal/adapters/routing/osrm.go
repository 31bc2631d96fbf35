package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/platform/obs"
	"pedestrian-nav-service/internal/ports"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// OSRM response format
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry *geojson.Geometry `json:"geometry"`
		Distance float64           `json:"distance"`
		Duration float64           `json:"duration"`
	} `json:"routes"`
}

// OSRMRouteProvider implements RouteProvider against an OSRM server
// (/route/v1) running a foot profile.
type OSRMRouteProvider struct {
	session *http.Client
	baseURL string
	profile string
}

func NewOSRMRouteProvider(baseURL string, timeout time.Duration) *OSRMRouteProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OSRMRouteProvider{
		session: &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "foot",
	}
}

func (o *OSRMRouteProvider) FetchRoute(
	ctx context.Context,
	waypoints []domain.GeoPoint,
	mode domain.TravelMode,
) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "osrm.FetchRoute")(&err)

	if mode != domain.Pedestrian && mode != "" {
		return nil, fmt.Errorf("OSRM route: unsupported travel mode %q", mode)
	}

	pairs := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		pairs = append(pairs, fmt.Sprintf("%.6f,%.6f", w.Lon, w.Lat))
	}

	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson",
		o.baseURL, o.profile, strings.Join(pairs, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("OSRM route: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OSRM route: execute request: %w", err)
	}
	defer resp.Body.Close()

	var parsed osrmResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)

	// OSRM reports "no route" as 400 with a JSON code, so read the code first.
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && parsed.Code != "" {
			return nil, fmt.Errorf("OSRM returned %d: %s: %s", resp.StatusCode, parsed.Code, parsed.Message)
		}
		return nil, fmt.Errorf("OSRM returned %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("OSRM route: JSON decode failed: %v: %w", decodeErr, ports.ErrMalformedResponse)
	}
	if parsed.Code != "Ok" {
		return nil, fmt.Errorf("OSRM route: code %q: %s", parsed.Code, parsed.Message)
	}
	if len(parsed.Routes) == 0 || parsed.Routes[0].Geometry == nil {
		return nil, fmt.Errorf("OSRM route: response has no route geometry: %w", ports.ErrMalformedResponse)
	}

	best := parsed.Routes[0]
	line, ok := best.Geometry.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("OSRM route: geometry is %T, want LineString: %w", best.Geometry.Geometry(), ports.ErrMalformedResponse)
	}

	points, err := lineToPoints(line)
	if err != nil {
		return nil, err
	}

	return &domain.Route{
		Points:          points,
		LengthMeters:    best.Distance,
		DurationSeconds: best.Duration,
	}, nil
}
