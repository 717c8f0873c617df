package geo

import (
	"sort"

	"github.com/golang/geo/s2"

	"crisis-response-service/models"
)

const earthRadiusKm = 6371.01

// DistanceKm computes the great-circle distance between two coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusKm
}

// ShelterWithDistance pairs a shelter with its distance from a query point.
type ShelterWithDistance struct {
	models.Shelter
	DistanceKm float64 `json:"distance_km"`
}

// NearestShelters returns shelters sorted nearest-first from the query point,
// capped at limit. A limit of 0 or less returns all shelters.
func NearestShelters(shelters []models.Shelter, lat, lon float64, limit int) []ShelterWithDistance {
	result := make([]ShelterWithDistance, 0, len(shelters))
	for _, shelter := range shelters {
		result = append(result, ShelterWithDistance{
			Shelter:    shelter,
			DistanceKm: DistanceKm(lat, lon, shelter.Latitude, shelter.Longitude),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
