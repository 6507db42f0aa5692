package report

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Insight counts accepted from a narrative response.
const (
	MinInsights = 3
	MaxInsights = 4
)

// Fallback text used when a model response is missing or malformed.
const (
	FallbackHeadline = "Your emissions summary is ready"
	FallbackSummary  = "An automated risk assessment is not available for this period."
	FallbackRisk     = "unknown"
)

// FallbackInsights pad or replace narrative insights.
var FallbackInsights = []string{
	"Review the largest emission source first: it offers the biggest reduction opportunity.",
	"Compare this period with the previous one to confirm whether reductions are holding.",
	"Keep monthly activity data complete so trends and shares stay accurate.",
	"Check refrigerant service records: small leaks carry a large CO2e impact.",
}

// Narrative is the headline-and-insights text produced by a language model.
type Narrative struct {
	Headline string   `json:"headline"`
	Insights []string `json:"insights"`
}

// RiskAssessment is the structured risk review produced by a language model.
type RiskAssessment struct {
	Summary         string   `json:"summary"`
	RiskLevel       string   `json:"risk_level"`
	Recommendations []string `json:"recommendations"`
	Anomalies       []string `json:"anomalies"`
	RegulatoryFlags []string `json:"regulatory_flags"`
}

var riskLevels = map[string]struct{}{"low": {}, "medium": {}, "high": {}}

// ParseNarrative decodes a model response into a Narrative. Any decoding
// failure yields the fallback narrative; a blank headline is replaced and the
// insights are trimmed or padded to between MinInsights and MaxInsights.
func ParseNarrative(raw string) Narrative {
	var n Narrative
	if err := json.Unmarshal([]byte(stripFences(raw)), &n); err != nil {
		logger.Debug().Err(err).Msg("narrative response is not valid JSON, using fallback")
		return FallbackNarrative()
	}

	n.Headline = strings.TrimSpace(n.Headline)
	if n.Headline == "" {
		n.Headline = FallbackHeadline
	}
	n.Insights = cleanStrings(n.Insights)
	if len(n.Insights) > MaxInsights {
		n.Insights = n.Insights[:MaxInsights]
	}
	for i := 0; len(n.Insights) < MinInsights; i++ {
		n.Insights = append(n.Insights, FallbackInsights[i])
	}
	return n
}

// FallbackNarrative returns the narrative used when no model output is usable.
func FallbackNarrative() Narrative {
	return Narrative{
		Headline: FallbackHeadline,
		Insights: append([]string(nil), FallbackInsights[:MinInsights]...),
	}
}

// ParseRiskAssessment decodes a model response into a RiskAssessment. Any
// decoding failure yields the fallback assessment. Unknown risk levels become
// FallbackRisk and list fields are never nil.
func ParseRiskAssessment(raw string) RiskAssessment {
	var r RiskAssessment
	if err := json.Unmarshal([]byte(stripFences(raw)), &r); err != nil {
		logger.Debug().Err(err).Msg("risk assessment response is not valid JSON, using fallback")
		return FallbackRiskAssessment()
	}

	r.Summary = strings.TrimSpace(r.Summary)
	if r.Summary == "" {
		r.Summary = FallbackSummary
	}
	r.RiskLevel = strings.ToLower(strings.TrimSpace(r.RiskLevel))
	if _, ok := riskLevels[r.RiskLevel]; !ok {
		r.RiskLevel = FallbackRisk
	}
	r.Recommendations = cleanStrings(r.Recommendations)
	r.Anomalies = cleanStrings(r.Anomalies)
	r.RegulatoryFlags = cleanStrings(r.RegulatoryFlags)
	return r
}

// FallbackRiskAssessment returns the assessment used when no model output is usable.
func FallbackRiskAssessment() RiskAssessment {
	return RiskAssessment{
		Summary:         FallbackSummary,
		RiskLevel:       FallbackRisk,
		Recommendations: []string{},
		Anomalies:       []string{},
		RegulatoryFlags: []string{},
	}
}

// stripFences removes a surrounding Markdown code fence such as ```json.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// cleanStrings trims entries and drops blanks. The result is never nil.
func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
