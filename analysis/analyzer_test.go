package analysis

import (
	"errors"
	"strings"
	"testing"

	"crisis-response-service/stubllm"
)

// failingClient errors on every call, exercising the fallback paths.
type failingClient struct{}

func (failingClient) GenerateJSON(system, user string, schema map[string]any) (string, error) {
	return "", errors.New("model unavailable")
}

func (failingClient) GenerateText(prompt string) (string, error) {
	return "", errors.New("model unavailable")
}

func (failingClient) DescribeImage(imageData []byte, context string) (string, error) {
	return "", errors.New("model unavailable")
}

func (failingClient) SourceName() string { return "failing" }

// garbageClient returns non-JSON responses, exercising the parse fallback paths.
type garbageClient struct{}

func (garbageClient) GenerateJSON(system, user string, schema map[string]any) (string, error) {
	return "I am sorry, I cannot help with that.", nil
}

func (garbageClient) GenerateText(prompt string) (string, error) {
	return "free text", nil
}

func (garbageClient) DescribeImage(imageData []byte, context string) (string, error) {
	return "an image", nil
}

func (garbageClient) SourceName() string { return "garbage" }

// recordingClient captures the arguments of the last DescribeImage call.
type recordingClient struct {
	imageContext string
}

func (c *recordingClient) GenerateJSON(system, user string, schema map[string]any) (string, error) {
	return "{}", nil
}

func (c *recordingClient) GenerateText(prompt string) (string, error) {
	return "", nil
}

func (c *recordingClient) DescribeImage(imageData []byte, context string) (string, error) {
	c.imageContext = context
	return "visible smoke", nil
}

func (c *recordingClient) SourceName() string { return "recording" }

func TestAnalyzeReportFallback(t *testing.T) {
	for _, a := range []*Analyzer{NewAnalyzer(failingClient{}), NewAnalyzer(garbageClient{})} {
		result := a.AnalyzeReport("Building on fire downtown", "5th and Main")
		if result == nil {
			t.Fatal("AnalyzeReport() returned nil")
		}
		want := DefaultEmergencyAnalysis()
		if result.Severity != want.Severity || result.Category != want.Category || result.Urgency != want.Urgency {
			t.Errorf("AnalyzeReport() fallback = %+v, want %+v", result, want)
		}
		if result.EstimatedResponseTime != want.EstimatedResponseTime {
			t.Errorf("AnalyzeReport() estimated_response_time = %v, want %v", result.EstimatedResponseTime, want.EstimatedResponseTime)
		}
		if len(result.Recommendations) != 2 {
			t.Errorf("AnalyzeReport() recommendations = %v", result.Recommendations)
		}
	}
}

func TestAnalyzeReportSuccess(t *testing.T) {
	a := NewAnalyzer(stubllm.NewClient())
	result := a.AnalyzeReport("Building on fire downtown", "5th and Main")
	if result.Severity != "high" || result.Category != "fire" {
		t.Errorf("AnalyzeReport() = %+v, want high/fire", result)
	}
	if result.Confidence != 0.9 {
		t.Errorf("AnalyzeReport() confidence = %v, want 0.9", result.Confidence)
	}
}

func TestDescribeImageFallback(t *testing.T) {
	a := NewAnalyzer(failingClient{})
	description := a.DescribeImage([]byte{0x89, 0x50}, "report photo")
	if description != "Image analysis failed. Please contact emergency services directly." {
		t.Errorf("DescribeImage() fallback = %q", description)
	}
}

func TestDescribeImagePassesRawContext(t *testing.T) {
	client := &recordingClient{}
	a := NewAnalyzer(client)

	description := a.DescribeImage([]byte{0x89, 0x50}, "smoke near the warehouse")
	if description != "visible smoke" {
		t.Errorf("DescribeImage() = %q", description)
	}
	if client.imageContext != "smoke near the warehouse" {
		t.Errorf("DescribeImage() context sent to client = %q, want the raw description", client.imageContext)
	}
	if strings.Contains(client.imageContext, "Analyze this emergency-related image") {
		t.Error("DescribeImage() context carries instruction text; the provider client owns the prompt")
	}
}

func TestSummarizeReports(t *testing.T) {
	a := NewAnalyzer(stubllm.NewClient())

	if got := a.SummarizeReports(nil); got != "No recent emergency reports." {
		t.Errorf("SummarizeReports(nil) = %q", got)
	}

	reports := []ReportDigest{
		{Title: "Fire downtown", Description: "Smoke visible from several blocks"},
		{Title: "Flooded underpass", Description: strings.Repeat("water ", 40)},
	}
	if got := a.SummarizeReports(reports); got == "" || got == "Summary generation failed." {
		t.Errorf("SummarizeReports() = %q", got)
	}

	failing := NewAnalyzer(failingClient{})
	if got := failing.SummarizeReports(reports); got != "Summary generation failed." {
		t.Errorf("SummarizeReports() fallback = %q", got)
	}
}

func TestAnalyzeTrendsFallback(t *testing.T) {
	a := NewAnalyzer(failingClient{})
	result := a.AnalyzeTrends(map[string]any{"total_reports": 3}, 7)
	want := DefaultTrendAnalysis()
	if result.TrendDirection != want.TrendDirection {
		t.Errorf("AnalyzeTrends() trend_direction = %v, want %v", result.TrendDirection, want.TrendDirection)
	}
	if len(result.Insights) != 1 || result.Insights[0] != want.Insights[0] {
		t.Errorf("AnalyzeTrends() insights = %v, want %v", result.Insights, want.Insights)
	}
}

func TestPredictRiskFallbackCarriesTimeFrame(t *testing.T) {
	a := NewAnalyzer(failingClient{})
	result := a.PredictRisk(map[string]any{}, "Downtown", 48)
	if result.TimeFrame != "Next 48 hours" {
		t.Errorf("PredictRisk() time_frame = %v, want Next 48 hours", result.TimeFrame)
	}
	if result.RiskLevel != "moderate" {
		t.Errorf("PredictRisk() fallback risk_level = %v, want moderate", result.RiskLevel)
	}
}

func TestDetectCrisisFallback(t *testing.T) {
	a := NewAnalyzer(failingClient{})
	result := a.DetectCrisis("major earthquake hits city", "news-site")
	if result.IsCrisis {
		t.Error("DetectCrisis() fallback should not report a crisis")
	}
	if result.Summary != "Analysis unavailable" {
		t.Errorf("DetectCrisis() fallback summary = %q", result.Summary)
	}
}

func TestDetectCrisisStub(t *testing.T) {
	a := NewAnalyzer(stubllm.NewClient())

	crisis := a.DetectCrisis("Massive fire burning in warehouse district", "news-site")
	if !crisis.IsCrisis {
		t.Error("DetectCrisis() expected crisis for fire text")
	}
	if crisis.Confidence <= 0.7 {
		t.Errorf("DetectCrisis() confidence = %v, want > 0.7", crisis.Confidence)
	}

	quiet := a.DetectCrisis("Local bakery wins pastry award", "news-site")
	if quiet.IsCrisis {
		t.Error("DetectCrisis() expected no crisis for quiet text")
	}
}

func TestTranslateFallbackEchoesInput(t *testing.T) {
	a := NewAnalyzer(failingClient{})
	result := a.Translate("Help, there is a fire", "Spanish")
	if result.TranslatedText != "Help, there is a fire" {
		t.Errorf("Translate() fallback = %q, want original text", result.TranslatedText)
	}
	if result.DetectedLanguage != "unknown" {
		t.Errorf("Translate() fallback detected_language = %q", result.DetectedLanguage)
	}
}

func TestTranslateStub(t *testing.T) {
	a := NewAnalyzer(stubllm.NewClient())
	result := a.Translate("Help, there is a fire", "Spanish")
	if !strings.HasPrefix(result.TranslatedText, "[translated]") {
		t.Errorf("Translate() = %q", result.TranslatedText)
	}
}
