package stubllm

import (
	"encoding/json"
	"testing"
)

func TestGenerateJSONDispatchesOnSchema(t *testing.T) {
	c := NewClient()

	tests := []struct {
		name     string
		property string
		user     string
		wantKey  string
	}{
		{name: "emergency", property: "estimated_response_time", user: "fire downtown", wantKey: "severity"},
		{name: "trend", property: "trend_direction", user: "data summary", wantKey: "trend_direction"},
		{name: "risk", property: "risk_level", user: "history", wantKey: "risk_level"},
		{name: "crisis", property: "is_crisis", user: "major fire", wantKey: "is_crisis"},
		{name: "translation", property: "translated_text", user: "help", wantKey: "translated_text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := map[string]any{
				"type":       "OBJECT",
				"properties": map[string]any{tt.property: map[string]any{"type": "STRING"}},
			}
			out, err := c.GenerateJSON("system", tt.user, schema)
			if err != nil {
				t.Fatalf("GenerateJSON() error: %v", err)
			}

			var decoded map[string]any
			if err := json.Unmarshal([]byte(out), &decoded); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if _, ok := decoded[tt.wantKey]; !ok {
				t.Errorf("output missing %q: %s", tt.wantKey, out)
			}
		})
	}
}

func TestGenerateJSONDeterministic(t *testing.T) {
	c := NewClient()
	schema := map[string]any{
		"type":       "OBJECT",
		"properties": map[string]any{"trend_direction": map[string]any{"type": "STRING"}},
	}

	first, err := c.GenerateJSON("system", "same input", schema)
	if err != nil {
		t.Fatalf("GenerateJSON() error: %v", err)
	}
	second, err := c.GenerateJSON("system", "same input", schema)
	if err != nil {
		t.Fatalf("GenerateJSON() error: %v", err)
	}
	if first != second {
		t.Errorf("same input produced different output:\n%s\n%s", first, second)
	}
}

func TestCrisisKeywordGating(t *testing.T) {
	c := NewClient()
	schema := map[string]any{
		"type":       "OBJECT",
		"properties": map[string]any{"is_crisis": map[string]any{"type": "BOOLEAN"}},
	}

	tests := []struct {
		text       string
		wantCrisis bool
	}{
		{"Massive fire in warehouse district", true},
		{"Traffic accident on Highway 95", true},
		{"Power outage downtown", true},
		{"Flood waters rising near the river", true},
		{"Local bakery wins pastry award", false},
	}

	for _, tt := range tests {
		out, err := c.GenerateJSON("system", tt.text, schema)
		if err != nil {
			t.Fatalf("GenerateJSON() error: %v", err)
		}
		var decoded struct {
			IsCrisis bool `json:"is_crisis"`
		}
		if err := json.Unmarshal([]byte(out), &decoded); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if decoded.IsCrisis != tt.wantCrisis {
			t.Errorf("is_crisis for %q = %v, want %v", tt.text, decoded.IsCrisis, tt.wantCrisis)
		}
	}
}
