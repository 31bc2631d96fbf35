package routing

import (
	"fmt"
	"pedestrian-nav-service/internal/ports"
	"time"
)

// ProviderOptions selects and configures a routing backend.
type ProviderOptions struct {
	Name        string // "ors" or "osrm"
	ORSAPIKey   string
	ORSBaseURL  string
	OSRMBaseURL string
	Timeout     time.Duration
}

// NewProvider builds the routing backend named in opts.
func NewProvider(opts ProviderOptions) (ports.RouteProvider, error) {
	switch opts.Name {
	case "osrm":
		return NewOSRMRouteProvider(opts.OSRMBaseURL, opts.Timeout), nil
	case "ors":
		p, err := NewORSRouteProvider(opts.ORSAPIKey, opts.ORSBaseURL, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown routing provider %q", opts.Name)
	}
}
