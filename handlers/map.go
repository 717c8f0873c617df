package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crisis-response-service/geo"
	"crisis-response-service/models"
)

// mapReport is the trimmed report view served to map clients.
type mapReport struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Severity    string   `json:"severity"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"created_at"`
}

// GetMapReports returns geotagged reports with truncated descriptions
func (h *Handlers) GetMapReports(c *gin.Context) {
	reports, err := h.db.GetGeolocatedReports(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load reports"})
		return
	}

	out := make([]mapReport, 0, len(reports))
	for _, report := range reports {
		description := report.Description
		if runes := []rune(description); len(runes) > 100 {
			description = string(runes[:100]) + "..."
		}
		out = append(out, mapReport{
			ID:          report.ID,
			Title:       report.Title,
			Description: description,
			Location:    report.Location,
			Latitude:    report.Latitude,
			Longitude:   report.Longitude,
			Severity:    report.Severity,
			Status:      report.Status,
			CreatedAt:   report.CreatedAt.UTC().Format("2006-01-02T15:04:05"),
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetMapAlerts returns active alerts, optionally filtered to those covering
// or near a query point (lat, lng, radius_km).
func (h *Handlers) GetMapAlerts(c *gin.Context) {
	alerts, err := h.db.GetActiveAlerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load alerts"})
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr == nil && lngErr == nil {
		radiusKm := 50.0
		if r, err := strconv.ParseFloat(c.Query("radius_km"), 64); err == nil && r > 0 {
			radiusKm = r
		}
		alerts = filterAlertsNear(alerts, lat, lng, radiusKm)
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, alerts)
}

// filterAlertsNear keeps alerts within reach of the query point. Alerts
// without coordinates are area-wide and always included. An alert with its
// own radius matches when the point falls inside it.
func filterAlertsNear(alerts []models.Alert, lat, lng, radiusKm float64) []models.Alert {
	var out []models.Alert
	for _, alert := range alerts {
		if alert.Latitude == nil || alert.Longitude == nil {
			out = append(out, alert)
			continue
		}
		distance := geo.DistanceKm(lat, lng, *alert.Latitude, *alert.Longitude)
		reach := radiusKm
		if alert.RadiusKm != nil && *alert.RadiusKm > reach {
			reach = *alert.RadiusKm
		}
		if distance <= reach {
			out = append(out, alert)
		}
	}
	return out
}

// GetMapShelters returns active shelters, nearest-first when a query point
// is provided.
func (h *Handlers) GetMapShelters(c *gin.Context) {
	shelters, err := h.db.GetActiveShelters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load shelters"})
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr == nil && lngErr == nil {
		limit := 0
		if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
			limit = l
		}
		c.JSON(http.StatusOK, geo.NearestShelters(shelters, lat, lng, limit))
		return
	}

	if shelters == nil {
		shelters = []models.Shelter{}
	}
	c.JSON(http.StatusOK, shelters)
}
