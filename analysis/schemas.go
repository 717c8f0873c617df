package analysis

// EmergencyAnalysis is the structured verdict for a single emergency report.
type EmergencyAnalysis struct {
	Severity              string   `json:"severity"`
	Category              string   `json:"category"`
	Urgency               string   `json:"urgency"`
	Confidence            float64  `json:"confidence"`
	Recommendations       []string `json:"recommendations"`
	EstimatedResponseTime string   `json:"estimated_response_time"`
}

// DefaultEmergencyAnalysis is returned whenever analysis cannot be obtained.
func DefaultEmergencyAnalysis() *EmergencyAnalysis {
	return &EmergencyAnalysis{
		Severity:   "medium",
		Category:   "other",
		Urgency:    "moderate",
		Confidence: 0.0,
		Recommendations: []string{
			"Please contact emergency services immediately",
			"Provide more details if possible",
		},
		EstimatedResponseTime: "15-30 minutes",
	}
}

// TrendAnalysis is the structured result of the trend analysis over a report window.
type TrendAnalysis struct {
	TrendDirection       string         `json:"trend_direction"`
	SeverityDistribution map[string]int `json:"severity_distribution"`
	CommonCategories     []string       `json:"common_categories"`
	PeakHours            []int          `json:"peak_hours"`
	GeographicalHotspots []string       `json:"geographical_hotspots"`
	Insights             []string       `json:"insights"`
}

// DefaultTrendAnalysis is returned whenever trend analysis cannot be obtained.
func DefaultTrendAnalysis() *TrendAnalysis {
	return &TrendAnalysis{
		TrendDirection:       "stable",
		SeverityDistribution: map[string]int{"medium": 50, "high": 30, "low": 20},
		CommonCategories:     []string{"Medical", "Fire", "Accident"},
		PeakHours:            []int{9, 12, 18},
		GeographicalHotspots: []string{"Downtown", "Highway 95"},
		Insights:             []string{"Analysis in progress - check back later"},
	}
}

// InsufficientDataTrendAnalysis is the short-circuit result for an empty
// report window. The model is never contacted in that case.
func InsufficientDataTrendAnalysis() *TrendAnalysis {
	return &TrendAnalysis{
		TrendDirection:       "stable",
		SeverityDistribution: map[string]int{},
		CommonCategories:     []string{},
		PeakHours:            []int{},
		GeographicalHotspots: []string{},
		Insights:             []string{"Insufficient data for trend analysis"},
	}
}

// RiskPrediction is the structured risk forecast for the next time window.
type RiskPrediction struct {
	RiskLevel               string   `json:"risk_level"`
	PredictedIncidents      int      `json:"predicted_incidents"`
	HighRiskAreas           []string `json:"high_risk_areas"`
	RecommendedPreparations []string `json:"recommended_preparations"`
	Confidence              float64  `json:"confidence"`
	TimeFrame               string   `json:"time_frame"`
}

// DefaultRiskPrediction is returned whenever risk prediction cannot be obtained.
func DefaultRiskPrediction(timeFrame string) *RiskPrediction {
	return &RiskPrediction{
		RiskLevel:          "moderate",
		PredictedIncidents: 2,
		HighRiskAreas:      []string{"Downtown", "Industrial District"},
		RecommendedPreparations: []string{
			"Ensure emergency vehicles are fueled and ready",
			"Check communication systems",
			"Review evacuation routes",
		},
		Confidence: 0.7,
		TimeFrame:  timeFrame,
	}
}

// CrisisDetection is the structured classification of scraped news or social text.
type CrisisDetection struct {
	IsCrisis           bool     `json:"is_crisis"`
	CrisisType         string   `json:"crisis_type"`
	Severity           string   `json:"severity"`
	Location           string   `json:"location"`
	Confidence         float64  `json:"confidence"`
	Summary            string   `json:"summary"`
	RecommendedActions []string `json:"recommended_actions"`
}

// DefaultCrisisDetection is the safe non-crisis fallback.
func DefaultCrisisDetection() *CrisisDetection {
	return &CrisisDetection{
		IsCrisis:           false,
		CrisisType:         "unknown",
		Severity:           "low",
		Location:           "",
		Confidence:         0.0,
		Summary:            "Analysis unavailable",
		RecommendedActions: []string{},
	}
}

// Translation is the structured result of an emergency text translation.
type Translation struct {
	TranslatedText   string  `json:"translated_text"`
	DetectedLanguage string  `json:"detected_language"`
	Confidence       float64 `json:"confidence"`
}

// DefaultTranslation echoes the input text back untranslated.
func DefaultTranslation(text string) *Translation {
	return &Translation{
		TranslatedText:   text,
		DetectedLanguage: "unknown",
		Confidence:       0.0,
	}
}

// Response schemas in the Gemini generationConfig format. Providers that
// cannot enforce a schema embed it in the system instruction instead.

func emergencyAnalysisSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"severity":                map[string]any{"type": "STRING"},
			"category":                map[string]any{"type": "STRING"},
			"urgency":                 map[string]any{"type": "STRING"},
			"confidence":              map[string]any{"type": "NUMBER"},
			"recommendations":         map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"estimated_response_time": map[string]any{"type": "STRING"},
		},
		"required": []string{"severity", "category", "urgency", "confidence", "recommendations", "estimated_response_time"},
	}
}

func trendAnalysisSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"trend_direction":       map[string]any{"type": "STRING"},
			"severity_distribution": map[string]any{"type": "OBJECT"},
			"common_categories":     map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"peak_hours":            map[string]any{"type": "ARRAY", "items": map[string]any{"type": "INTEGER"}},
			"geographical_hotspots": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"insights":              map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
		},
		"required": []string{"trend_direction", "insights"},
	}
}

func riskPredictionSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"risk_level":               map[string]any{"type": "STRING"},
			"predicted_incidents":      map[string]any{"type": "INTEGER"},
			"high_risk_areas":          map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"recommended_preparations": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"confidence":               map[string]any{"type": "NUMBER"},
			"time_frame":               map[string]any{"type": "STRING"},
		},
		"required": []string{"risk_level", "predicted_incidents", "confidence", "time_frame"},
	}
}

func crisisDetectionSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"is_crisis":           map[string]any{"type": "BOOLEAN"},
			"crisis_type":         map[string]any{"type": "STRING"},
			"severity":            map[string]any{"type": "STRING"},
			"location":            map[string]any{"type": "STRING"},
			"confidence":          map[string]any{"type": "NUMBER"},
			"summary":             map[string]any{"type": "STRING"},
			"recommended_actions": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
		},
		"required": []string{"is_crisis", "crisis_type", "severity", "confidence", "summary"},
	}
}

func translationSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"translated_text":   map[string]any{"type": "STRING"},
			"detected_language": map[string]any{"type": "STRING"},
			"confidence":        map[string]any{"type": "NUMBER"},
		},
		"required": []string{"translated_text", "detected_language", "confidence"},
	}
}
