package monitoring

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/apex/log"
	"golang.org/x/net/html"

	"crisis-response-service/analysis"
	"crisis-response-service/config"
	"crisis-response-service/database"
	"crisis-response-service/metrics"
	"crisis-response-service/models"
)

// Text handed to crisis analysis is capped to keep prompts bounded.
const maxAnalyzedTextLen = 2000

// Confidence thresholds for keeping a detection.
const (
	newsConfidenceThreshold   = 0.6
	socialConfidenceThreshold = 0.5
	alertConfidenceThreshold  = 0.7
)

// SocialPost is one monitored social media item.
type SocialPost struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Platform  string    `json:"platform"`
	Location  string    `json:"location"`
}

// SocialCrisis pairs a post with its crisis analysis.
type SocialCrisis struct {
	OriginalPost SocialPost                `json:"original_post"`
	Analysis     *analysis.CrisisDetection `json:"analysis"`
	DetectedAt   time.Time                 `json:"detected_at"`
}

// Report is the combined crisis monitoring payload.
type Report struct {
	MonitoringTimestamp string         `json:"monitoring_timestamp"`
	SourcesChecked      int            `json:"sources_checked"`
	CrisesDetected      int            `json:"crises_detected"`
	SocialAlerts        int            `json:"social_alerts"`
	CrisisCounts        map[string]int `json:"crisis_counts_by_severity"`
	CrisisTypes         []string       `json:"crisis_types_detected"`
	AffectedLocations   []string       `json:"affected_locations"`
	Recommendations     []string       `json:"recommendations"`
	DetailedResults     struct {
		NewsCrises       []analysis.CrisisDetection `json:"news_crises"`
		SocialMonitoring []SocialCrisis             `json:"social_monitoring"`
	} `json:"detailed_results"`
}

// AlertNotifier posts a created alert to the operations channel.
type AlertNotifier interface {
	SendAlert(alert *models.Alert) bool
}

// Service scrapes news sources and simulated social feeds for crisis signals
// and raises automatic alerts from them.
type Service struct {
	db         *database.Database
	analyzer   *analysis.Analyzer
	team       AlertNotifier
	httpClient *http.Client
	urls       []string
	maxSources int
}

func NewService(db *database.Database, analyzer *analysis.Analyzer, team AlertNotifier, cfg *config.Config) *Service {
	return &Service{
		db:         db,
		analyzer:   analyzer,
		team:       team,
		httpClient: &http.Client{Timeout: cfg.HTTPFetchTimeout},
		urls:       cfg.MonitoringURLs,
		maxSources: cfg.MonitoringMaxSources,
	}
}

// ScrapeNewsForCrises fetches the configured news sources and keeps crisis
// detections above the news confidence threshold. Fetch and analysis errors
// skip the source.
func (s *Service) ScrapeNewsForCrises(ctx context.Context) []analysis.CrisisDetection {
	urls := s.urls
	if len(urls) > s.maxSources {
		urls = urls[:s.maxSources]
	}

	var detections []analysis.CrisisDetection
	for _, url := range urls {
		text, err := s.fetchPageText(ctx, url)
		if err != nil {
			log.WithError(err).Errorf("Error scraping %s", url)
			metrics.MonitoringScrapesTotal.WithLabelValues("error").Inc()
			continue
		}
		if text == "" {
			metrics.MonitoringScrapesTotal.WithLabelValues("empty").Inc()
			continue
		}
		metrics.MonitoringScrapesTotal.WithLabelValues("success").Inc()

		if runes := []rune(text); len(runes) > maxAnalyzedTextLen {
			text = string(runes[:maxAnalyzedTextLen])
		}
		detection := s.analyzer.DetectCrisis(text, url)
		if detection.IsCrisis && detection.Confidence > newsConfidenceThreshold {
			detections = append(detections, *detection)
		}
	}
	return detections
}

// fetchPageText downloads a page and strips it to visible text.
func (s *Service) fetchPageText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "CrisisNavigator/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	return extractText(resp.Body)
}

// extractText walks an HTML document collecting visible text nodes, skipping
// script and style subtrees.
func extractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return sb.String(), nil
}

// simulatedSocialPosts stand in for a social media feed until a real
// firehose integration exists.
func simulatedSocialPosts(now time.Time) []SocialPost {
	return []SocialPost{
		{
			Content:   "Major traffic accident on Highway 95, multiple vehicles involved, emergency responders on scene",
			Timestamp: now.Add(-15 * time.Minute),
			Platform:  "Twitter",
			Location:  "Highway 95",
		},
		{
			Content:   "Power outage affecting downtown area, traffic lights not working, avoid the area",
			Timestamp: now.Add(-30 * time.Minute),
			Platform:  "Facebook",
			Location:  "Downtown",
		},
		{
			Content:   "Smoke visible from industrial district, fire department responding",
			Timestamp: now.Add(-45 * time.Minute),
			Platform:  "Instagram",
			Location:  "Industrial District",
		},
	}
}

// MonitorSocialKeywords analyzes the social feed and keeps crisis detections
// above the social confidence threshold.
func (s *Service) MonitorSocialKeywords() []SocialCrisis {
	now := time.Now().UTC()

	var crises []SocialCrisis
	for _, post := range simulatedSocialPosts(now) {
		detection := s.analyzer.DetectCrisis(post.Content, post.Platform)
		if detection.IsCrisis && detection.Confidence > socialConfidenceThreshold {
			crises = append(crises, SocialCrisis{
				OriginalPost: post,
				Analysis:     detection,
				DetectedAt:   time.Now().UTC(),
			})
		}
	}
	return crises
}

// CreateAutomaticAlerts persists alerts for high-confidence severe detections
// from both monitoring channels and returns how many were created.
func (s *Service) CreateAutomaticAlerts(ctx context.Context) int {
	created := 0

	for _, crisis := range s.ScrapeNewsForCrises(ctx) {
		if !severeEnough(crisis.Severity) || crisis.Confidence <= alertConfidenceThreshold {
			continue
		}
		alert := &models.Alert{
			Title:       fmt.Sprintf("Detected Crisis: %s", titleCase(crisis.CrisisType)),
			Description: crisis.Summary,
			AlertType:   crisis.CrisisType,
			Severity:    crisis.Severity,
			Location:    crisis.Location,
			Active:      true,
		}
		if _, err := s.db.InsertAlert(ctx, alert); err != nil {
			log.WithError(err).Error("Failed to create automatic alert")
			continue
		}
		created++
		s.notifyTeam(alert)
	}

	for _, social := range s.MonitorSocialKeywords() {
		if !severeEnough(social.Analysis.Severity) {
			continue
		}
		alert := &models.Alert{
			Title:       fmt.Sprintf("Social Media Alert: %s", titleCase(social.Analysis.CrisisType)),
			Description: fmt.Sprintf("Detected from social media: %s", social.Analysis.Summary),
			AlertType:   social.Analysis.CrisisType,
			Severity:    social.Analysis.Severity,
			Location:    social.Analysis.Location,
			Active:      true,
		}
		if _, err := s.db.InsertAlert(ctx, alert); err != nil {
			log.WithError(err).Error("Failed to create automatic alert")
			continue
		}
		created++
		s.notifyTeam(alert)
	}

	if created > 0 {
		log.Infof("Created %d automatic alerts from monitoring", created)
	}
	return created
}

// notifyTeam forwards a created alert to the operations channel. Delivery is
// fire-and-forget; the notifier reports its own failures.
func (s *Service) notifyTeam(alert *models.Alert) {
	if s.team == nil {
		return
	}
	alert.CreatedAt = time.Now().UTC()
	s.team.SendAlert(alert)
}

// GenerateReport runs both monitoring channels and summarizes the results.
func (s *Service) GenerateReport(ctx context.Context) *Report {
	newsResults := s.ScrapeNewsForCrises(ctx)
	socialResults := s.MonitorSocialKeywords()

	report := &Report{
		MonitoringTimestamp: time.Now().UTC().Format(time.RFC3339),
		SourcesChecked:      len(s.urls),
		SocialAlerts:        len(socialResults),
		CrisisCounts: map[string]int{
			models.SeverityCritical: 0,
			models.SeverityHigh:     0,
			models.SeverityMedium:   0,
			models.SeverityLow:      0,
		},
		CrisisTypes:       []string{},
		AffectedLocations: []string{},
		Recommendations: []string{
			"Continue monitoring news sources for emerging threats",
			"Verify social media reports through official channels",
			"Maintain readiness for high-severity incidents",
		},
	}

	seenTypes := map[string]bool{}
	seenLocations := map[string]bool{}
	for _, crisis := range newsResults {
		report.CrisisCounts[crisis.Severity]++
		if crisis.IsCrisis {
			report.CrisesDetected++
			if !seenTypes[crisis.CrisisType] {
				seenTypes[crisis.CrisisType] = true
				report.CrisisTypes = append(report.CrisisTypes, crisis.CrisisType)
			}
		}
		if crisis.Location != "" && !seenLocations[crisis.Location] {
			seenLocations[crisis.Location] = true
			report.AffectedLocations = append(report.AffectedLocations, crisis.Location)
		}
	}

	report.DetailedResults.NewsCrises = newsResults
	report.DetailedResults.SocialMonitoring = socialResults
	return report
}

func severeEnough(severity string) bool {
	return severity == models.SeverityHigh || severity == models.SeverityCritical
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
