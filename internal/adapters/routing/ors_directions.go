package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/platform/obs"
	"pedestrian-nav-service/internal/ports"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// ORSRouteProvider implements RouteProvider using the OpenRouteService
// directions endpoint (GeoJSON output).
//
// It performs exactly one HTTP call per FetchRoute and never retries.
// The provider is safe for concurrent use.
type ORSRouteProvider struct {
	client *orsClient
}

func NewORSRouteProvider(apiKey, baseURL string, timeout time.Duration) (*ORSRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSRouteProvider{client: newORSClient(apiKey, baseURL, timeout)}, nil
}

// orsProfile maps a travel mode onto the ORS routing profile.
func orsProfile(mode domain.TravelMode) (string, error) {
	switch mode {
	case domain.Pedestrian, "":
		return "foot-walking", nil
	default:
		return "", fmt.Errorf("unsupported travel mode %q", mode)
	}
}

func (o *ORSRouteProvider) FetchRoute(
	ctx context.Context,
	waypoints []domain.GeoPoint,
	mode domain.TravelMode,
) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "ors.FetchRoute")(&err)

	profile, err := orsProfile(mode)
	if err != nil {
		return nil, fmt.Errorf("ORS directions: %w", err)
	}

	coords := make([][]float64, 0, len(waypoints))
	for _, w := range waypoints {
		coords = append(coords, w.CoordsToList())
	}

	payload, err := json.Marshal(directionsRequest{Coordinates: coords})
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.client.baseURL, profile)
	req, err := o.client.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ORS directions: %w", err)
	}

	resp, err := o.client.do(req)
	if err != nil {
		return nil, fmt.Errorf("ORS directions request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ORS directions: read body: %w", err)
	}

	return decodeDirections(body)
}

func decodeDirections(body []byte) (*domain.Route, error) {
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("decode directions response: %v: %w", err, ports.ErrMalformedResponse)
	}

	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("directions response has no features: %w", ports.ErrMalformedResponse)
	}

	feature := fc.Features[0]
	line, ok := feature.Geometry.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("directions geometry is %T, want LineString: %w", feature.Geometry, ports.ErrMalformedResponse)
	}

	points, err := lineToPoints(line)
	if err != nil {
		return nil, err
	}

	var summary directionsSummary
	if raw, ok := feature.Properties["summary"]; ok {
		// Properties decode into generic maps; round-trip to get typed fields.
		b, err := json.Marshal(raw)
		if err == nil {
			_ = json.Unmarshal(b, &summary)
		}
	}

	return &domain.Route{
		Points:          points,
		LengthMeters:    summary.Distance,
		DurationSeconds: summary.Duration,
	}, nil
}

// lineToPoints converts a [lon, lat] line into route points.
func lineToPoints(line orb.LineString) ([]domain.GeoPoint, error) {
	if len(line) == 0 {
		return nil, fmt.Errorf("route geometry is empty: %w", ports.ErrMalformedResponse)
	}

	points := make([]domain.GeoPoint, 0, len(line))
	for _, p := range line {
		points = append(points, domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()})
	}
	return points, nil
}
