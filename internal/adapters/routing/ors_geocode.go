package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/platform/obs"
	"pedestrian-nav-service/internal/ports"
	"time"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder resolves address waypoints with OpenRouteService
// (/geocode/search), consulting a persistent cache first.
type ORSGeocoder struct {
	client  *orsClient
	cache   ports.GeocodeCache
	country string
}

// NewORSGeocoder builds a geocoder. country optionally restricts results
// (ISO 3166-1 alpha-2, e.g. "KR"); cache may be nil.
func NewORSGeocoder(apiKey, baseURL, country string, cache ports.GeocodeCache) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSGeocoder{
		client:  newORSClient(apiKey, baseURL, 10*time.Second),
		cache:   cache,
		country: country,
	}, nil
}

// Geocode returns coordinates keyed by normalised address. An address the
// service cannot resolve is left out of the result rather than failing the
// batch.
func (g *ORSGeocoder) Geocode(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.GeoPoint, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	seen := make(map[string]struct{}, len(addresses))
	needed := make([]string, 0, len(addresses))
	for _, a := range addresses {
		n := domain.NormalizeAddress(a)
		if n == "" {
			return nil, errors.New("geocode: address must be non-empty")
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		needed = append(needed, n)
	}

	out := make(map[string]domain.GeoPoint, len(needed))
	if g.cache != nil {
		hits, err := g.cache.GetMany(ctx, needed)
		if err != nil {
			log.Printf("geocode cache read failed: %v", err)
		} else {
			for k, v := range hits {
				out[k] = v
			}
		}
	}

	fresh := make(map[string]domain.GeoPoint)
	for _, a := range needed {
		if _, ok := out[a]; ok {
			continue
		}

		p, found, err := g.geocodeOne(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("geocode %q: %w", a, err)
		}
		if !found {
			log.Printf("geocode no results address=%q", a)
			continue
		}
		fresh[a] = p
		out[a] = p
	}

	if g.cache != nil && len(fresh) > 0 {
		if err := g.cache.PutMany(ctx, fresh); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return out, nil
}

// geocodeOne resolves a single address. found is false when the service
// returns no features.
func (g *ORSGeocoder) geocodeOne(ctx context.Context, address string) (_ domain.GeoPoint, found bool, _ error) {
	req, err := g.client.newRequest(ctx, http.MethodGet, g.client.baseURL+"/geocode/search", nil)
	if err != nil {
		return domain.GeoPoint{}, false, err
	}

	q := req.URL.Query()
	q.Set("text", address)
	q.Set("size", "1")
	if g.country != "" {
		q.Set("boundary.country", g.country)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := g.client.do(req)
	if err != nil {
		return domain.GeoPoint{}, false, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.GeoPoint{}, false, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.GeoPoint{}, false, nil
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) < 2 {
		return domain.GeoPoint{}, false, errors.New("invalid coordinate format")
	}

	p := domain.GeoPoint{Lon: coords[0], Lat: coords[1]}
	if !p.Valid() {
		return domain.GeoPoint{}, false, fmt.Errorf("coordinate out of range: %v", coords)
	}
	return p, true, nil
}
