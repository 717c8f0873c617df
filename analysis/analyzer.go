package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/apex/log"

	"crisis-response-service/llm"
	"crisis-response-service/metrics"
)

// Analyzer runs LLM-backed analysis with fixed fallbacks. Every method is
// total: model or parse failures are logged and a default result is returned,
// never an error.
type Analyzer struct {
	client llm.Client
}

func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

const emergencySystemPrompt = "You are an expert emergency response analyst. " +
	"Analyze the emergency report and provide structured information to help coordinate response efforts. " +
	"Consider the description and location to determine:\n" +
	"1. Severity level (low, medium, high, critical)\n" +
	"2. Emergency category (fire, flood, medical, accident, weather, security, other)\n" +
	"3. Urgency level (immediate, urgent, moderate, low)\n" +
	"4. Confidence score (0.0 to 1.0)\n" +
	"5. Specific recommendations for response teams\n" +
	"6. Estimated response time needed\n\n" +
	"Respond with JSON in the specified format."

// AnalyzeReport classifies a single emergency report.
func (a *Analyzer) AnalyzeReport(description, location string) *EmergencyAnalysis {
	content := fmt.Sprintf("Emergency Description: %s", description)
	if location != "" {
		content += fmt.Sprintf("\nLocation: %s", location)
	}

	response, err := a.client.GenerateJSON(emergencySystemPrompt, content, emergencyAnalysisSchema())
	if err != nil {
		log.WithError(err).Error("Failed to analyze emergency report")
		metrics.RecordAnalysis("report", "error")
		return DefaultEmergencyAnalysis()
	}

	result, err := ParseEmergencyAnalysis(response)
	if err != nil {
		log.WithError(err).Error("Failed to parse emergency analysis response")
		metrics.RecordAnalysis("report", "parse_error")
		return DefaultEmergencyAnalysis()
	}

	metrics.RecordAnalysis("report", "success")
	return result
}

// DescribeImage produces a free-text description of an emergency image.
// The provider client owns the instruction prompt; only the raw report
// description is passed through as context.
func (a *Analyzer) DescribeImage(imageData []byte, context string) string {
	description, err := a.client.DescribeImage(imageData, context)
	if err != nil {
		log.WithError(err).Error("Failed to analyze emergency image")
		metrics.RecordAnalysis("image", "error")
		return "Image analysis failed. Please contact emergency services directly."
	}
	if description == "" {
		return "Unable to analyze image"
	}

	metrics.RecordAnalysis("image", "success")
	return description
}

// SummarizeReports generates a brief situation summary from report
// titles and truncated descriptions. At most five reports are included.
func (a *Analyzer) SummarizeReports(reports []ReportDigest) string {
	if len(reports) == 0 {
		return "No recent emergency reports."
	}

	sample := reports
	if len(sample) > 5 {
		sample = sample[:5]
	}
	var reportsText string
	for i, r := range sample {
		desc := r.Description
		if runes := []rune(desc); len(runes) > 100 {
			desc = string(runes[:100])
		}
		reportsText += fmt.Sprintf("Report %d: %s - %s...\n", i+1, r.Title, desc)
	}

	prompt := "Generate a brief summary of the current emergency situation based on these reports. " +
		"Highlight the most critical issues and provide an overall assessment:\n\n" + reportsText

	summary, err := a.client.GenerateText(prompt)
	if err != nil {
		log.WithError(err).Error("Failed to generate emergency summary")
		metrics.RecordAnalysis("summary", "error")
		return "Summary generation failed."
	}
	if summary == "" {
		return "Unable to generate summary"
	}

	metrics.RecordAnalysis("summary", "success")
	return summary
}

// ReportDigest is the minimal report view the summary prompt needs.
type ReportDigest struct {
	Title       string
	Description string
}

const trendSystemPrompt = `You are an emergency management analyst. Analyze the emergency data to identify trends and patterns.

Provide insights about:
- Overall trend direction (increasing, decreasing, stable)
- Severity distribution patterns
- Most common emergency categories
- Peak activity hours (0-23)
- Geographic hotspots
- Actionable insights for emergency preparedness

Respond with JSON in the specified format.`

// AnalyzeTrends runs trend analysis over a pre-aggregated data summary.
// Callers short-circuit the empty window themselves; this method always
// contacts the model.
func (a *Analyzer) AnalyzeTrends(dataSummary any, daysBack int) *TrendAnalysis {
	summaryJSON, err := json.MarshalIndent(dataSummary, "", "  ")
	if err != nil {
		log.WithError(err).Error("Failed to encode trend data summary")
		return DefaultTrendAnalysis()
	}

	prompt := fmt.Sprintf("Analyze this emergency data from the past %d days:\n\n%s\n\n"+
		"Identify trends, patterns, and provide actionable insights for emergency management teams.",
		daysBack, summaryJSON)

	response, err := a.client.GenerateJSON(trendSystemPrompt, prompt, trendAnalysisSchema())
	if err != nil {
		log.WithError(err).Error("Trend analysis failed")
		metrics.RecordAnalysis("trends", "error")
		return DefaultTrendAnalysis()
	}

	result, err := ParseTrendAnalysis(response)
	if err != nil {
		log.WithError(err).Error("Failed to parse trend analysis response")
		metrics.RecordAnalysis("trends", "parse_error")
		return DefaultTrendAnalysis()
	}

	metrics.RecordAnalysis("trends", "success")
	return result
}

// PredictRisk forecasts emergency risk for the next timeHours hours from a
// pre-aggregated historical context.
func (a *Analyzer) PredictRisk(contextData any, location string, timeHours int) *RiskPrediction {
	timeFrame := fmt.Sprintf("Next %d hours", timeHours)

	contextJSON, err := json.MarshalIndent(contextData, "", "  ")
	if err != nil {
		log.WithError(err).Error("Failed to encode risk context")
		return DefaultRiskPrediction(timeFrame)
	}

	systemPrompt := fmt.Sprintf("You are a predictive emergency analytics expert. "+
		"Based on historical emergency data, predict the risk level and potential incidents for the next %d hours.\n\n"+
		"Consider:\n"+
		"- Historical incident patterns\n"+
		"- Severity distributions\n"+
		"- Time-based patterns\n"+
		"- Location-specific risks (if provided)\n"+
		"- Seasonal and environmental factors\n\n"+
		"Provide specific, actionable predictions and recommendations.\n\n"+
		"Respond with JSON in the specified format.", timeHours)

	focus := "General area prediction"
	if location != "" {
		focus = "Focus area: " + location
	}
	prompt := fmt.Sprintf("Based on this historical emergency data, predict emergency risk for the next %d hours:\n\n%s\n\n%s\n\n"+
		"Provide risk assessment and preparedness recommendations.", timeHours, contextJSON, focus)

	response, err := a.client.GenerateJSON(systemPrompt, prompt, riskPredictionSchema())
	if err != nil {
		log.WithError(err).Error("Risk prediction failed")
		metrics.RecordAnalysis("risk", "error")
		return DefaultRiskPrediction(timeFrame)
	}

	result, err := ParseRiskPrediction(response)
	if err != nil {
		log.WithError(err).Error("Failed to parse risk prediction response")
		metrics.RecordAnalysis("risk", "parse_error")
		return DefaultRiskPrediction(timeFrame)
	}

	metrics.RecordAnalysis("risk", "success")
	return result
}

const crisisSystemPrompt = `You are a crisis detection AI system. Analyze the provided news text to identify potential emergency situations.

Look for:
- Natural disasters (earthquakes, hurricanes, floods, wildfires)
- Human-made emergencies (accidents, building collapses, chemical spills)
- Public health emergencies (disease outbreaks, contamination)
- Security incidents (terrorism, mass violence)
- Infrastructure failures (power outages, transportation disruptions)

Determine:
1. Is this describing an active crisis situation?
2. What type of crisis is it?
3. Severity level (low/medium/high/critical)
4. Location if mentioned
5. Confidence in your assessment (0.0 to 1.0)
6. Brief summary of the situation
7. Recommended emergency response actions

Respond with JSON in the specified format. Only classify as crisis if it's an active, current emergency situation.`

// DetectCrisis classifies scraped news or social text.
func (a *Analyzer) DetectCrisis(text, source string) *CrisisDetection {
	prompt := fmt.Sprintf("Analyze this news content for crisis situations:\n\nSource: %s\n\nContent:\n%s", source, text)

	response, err := a.client.GenerateJSON(crisisSystemPrompt, prompt, crisisDetectionSchema())
	if err != nil {
		log.WithError(err).Error("Crisis analysis failed")
		metrics.RecordAnalysis("crisis", "error")
		return DefaultCrisisDetection()
	}

	result, err := ParseCrisisDetection(response)
	if err != nil {
		log.WithError(err).Error("Failed to parse crisis detection response")
		metrics.RecordAnalysis("crisis", "parse_error")
		return DefaultCrisisDetection()
	}

	metrics.RecordAnalysis("crisis", "success")
	return result
}

// Translate translates emergency text to the named target language.
// targetName is the human-readable language name shown to the model.
func (a *Analyzer) Translate(text, targetName string) *Translation {
	systemPrompt := fmt.Sprintf("You are a professional emergency services translator. "+
		"Translate the following emergency report text to %s.\n\n"+
		"Requirements:\n"+
		"- Maintain the urgency and critical nature of the message\n"+
		"- Preserve all important details (locations, numbers, names)\n"+
		"- Use appropriate emergency terminology\n"+
		"- Detect the original language\n"+
		"- Provide confidence score (0.0 to 1.0)\n\n"+
		"Respond with JSON in the specified format.", targetName)

	response, err := a.client.GenerateJSON(systemPrompt, fmt.Sprintf("Translate this emergency text: %s", text), translationSchema())
	if err != nil {
		log.WithError(err).Error("Translation failed")
		metrics.RecordAnalysis("translation", "error")
		return DefaultTranslation(text)
	}

	result, err := ParseTranslation(response)
	if err != nil {
		log.WithError(err).Error("Failed to parse translation response")
		metrics.RecordAnalysis("translation", "parse_error")
		return DefaultTranslation(text)
	}

	metrics.RecordAnalysis("translation", "success")
	return result
}
