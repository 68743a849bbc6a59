package pipeline

import (
	"fmt"

	"github.com/sells-group/roster-cli/internal/geo"
	"github.com/sells-group/roster-cli/internal/model"
)

// DistanceFunc returns the distance in miles between two coordinates.
type DistanceFunc func(lat1, lon1, lat2, lon2 float64) float64

// UnknownShopError reports a customer whose shop has no profile.
type UnknownShopError struct {
	CustomerID string
	ShopID     string
}

func (e *UnknownShopError) Error() string {
	return fmt.Sprintf("pipeline: customer %s references unknown shop %s", e.CustomerID, e.ShopID)
}

// GeofenceStats counts the outcome of the geofence filter.
type GeofenceStats struct {
	Input       int `json:"input" yaml:"input"`
	Kept        int `json:"kept" yaml:"kept"`
	OutOfRadius int `json:"out_of_radius" yaml:"out_of_radius"`
}

// Geofence keeps customers within their shop's service radius, boundary
// inclusive. A nil dist uses geo.Distance. A customer of an unknown shop or
// an invalid shop profile aborts the filter.
func Geofence(records []model.Customer, shops []model.Shop, dist DistanceFunc) ([]model.Customer, GeofenceStats, error) {
	if dist == nil {
		dist = geo.Distance
	}

	byID, err := indexShops(shops)
	if err != nil {
		return nil, GeofenceStats{}, err
	}

	stats := GeofenceStats{Input: len(records)}
	out := make([]model.Customer, 0, len(records))
	for _, c := range records {
		shop, ok := byID[c.ShopID]
		if !ok {
			return nil, stats, &UnknownShopError{CustomerID: c.ID, ShopID: c.ShopID}
		}
		if dist(c.Latitude, c.Longitude, shop.Latitude, shop.Longitude) > shop.RadiusMiles {
			stats.OutOfRadius++
			continue
		}
		out = append(out, c)
	}
	stats.Kept = len(out)
	return out, stats, nil
}

// indexShops validates shop profiles and maps them by id.
func indexShops(shops []model.Shop) (map[string]model.Shop, error) {
	byID := make(map[string]model.Shop, len(shops))
	for _, s := range shops {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		byID[s.ID] = s
	}
	return byID, nil
}
