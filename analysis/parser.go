package analysis

import (
	"encoding/json"
	"errors"
	"strings"
)

// extractJSONFromMarkdown extracts JSON from markdown code blocks
func extractJSONFromMarkdown(response string) string {
	// Look for JSON code blocks with ``` markers
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		// No code block found, try to find JSON object directly
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	// Find the end of the first code block
	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	// Extract content between the markers
	content := response[startIdx+len(startMarker) : endIdx]

	// Remove the language identifier if present (e.g., "json")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

func decode(response string, out any) error {
	cleaned := extractJSONFromMarkdown(strings.TrimSpace(response))
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return errors.New("failed to parse JSON response: " + err.Error())
	}
	return nil
}

// ParseEmergencyAnalysis parses and validates a model response for a
// single-report analysis.
func ParseEmergencyAnalysis(response string) (*EmergencyAnalysis, error) {
	var result EmergencyAnalysis
	if err := decode(response, &result); err != nil {
		return nil, err
	}
	if result.Severity == "" {
		return nil, errors.New("severity is required")
	}
	if result.Category == "" {
		return nil, errors.New("category is required")
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, errors.New("confidence must be between 0 and 1")
	}
	return &result, nil
}

// ParseTrendAnalysis parses and validates a trend analysis response.
func ParseTrendAnalysis(response string) (*TrendAnalysis, error) {
	var result TrendAnalysis
	if err := decode(response, &result); err != nil {
		return nil, err
	}
	if result.TrendDirection == "" {
		return nil, errors.New("trend_direction is required")
	}
	return &result, nil
}

// ParseRiskPrediction parses and validates a risk prediction response.
func ParseRiskPrediction(response string) (*RiskPrediction, error) {
	var result RiskPrediction
	if err := decode(response, &result); err != nil {
		return nil, err
	}
	if result.RiskLevel == "" {
		return nil, errors.New("risk_level is required")
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, errors.New("confidence must be between 0 and 1")
	}
	return &result, nil
}

// ParseCrisisDetection parses and validates a crisis detection response.
func ParseCrisisDetection(response string) (*CrisisDetection, error) {
	var result CrisisDetection
	if err := decode(response, &result); err != nil {
		return nil, err
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, errors.New("confidence must be between 0 and 1")
	}
	if result.CrisisType == "" {
		result.CrisisType = "unknown"
	}
	return &result, nil
}

// ParseTranslation parses and validates a translation response.
func ParseTranslation(response string) (*Translation, error) {
	var result Translation
	if err := decode(response, &result); err != nil {
		return nil, err
	}
	if result.TranslatedText == "" {
		return nil, errors.New("translated_text is required")
	}
	return &result, nil
}
