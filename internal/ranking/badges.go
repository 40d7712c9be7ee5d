package ranking

import "strings"

// Tone is the visual severity attached to a label.
type Tone string

const (
	ToneSuccess   Tone = "success"
	ToneWarning   Tone = "warning"
	ToneDanger    Tone = "danger"
	ToneInfo      Tone = "info"
	ToneSecondary Tone = "secondary"
)

// Level is a labelled classification.
type Level struct {
	Label string
	Tone  Tone
}

// CategoryBadge classifies an analysis category. Every input maps to a tone.
func CategoryBadge(category string) Tone {
	lower := strings.ToLower(category)
	switch {
	case strings.Contains(lower, "high"):
		return ToneSuccess
	case strings.Contains(lower, "qualified"):
		return ToneWarning
	default:
		return ToneDanger
	}
}

// ScoreTier classifies a 0-100 relevance or match score.
func ScoreTier(score float64) Tone {
	switch {
	case score >= 80:
		return ToneSuccess
	case score >= 60:
		return ToneWarning
	default:
		return ToneDanger
	}
}

// MatchLevel labels a job description match score.
func MatchLevel(score float64) Level {
	switch tone := ScoreTier(score); tone {
	case ToneSuccess:
		return Level{Label: "Excellent Match", Tone: tone}
	case ToneWarning:
		return Level{Label: "Good Match", Tone: tone}
	default:
		return Level{Label: "Poor Match", Tone: tone}
	}
}

// BiasLevel labels an overall bias score. Lower is better.
func BiasLevel(score float64) Level {
	switch {
	case score <= 20:
		return Level{Label: "Low Bias", Tone: ToneSuccess}
	case score <= 40:
		return Level{Label: "Medium Bias", Tone: ToneWarning}
	default:
		return Level{Label: "High Bias", Tone: ToneDanger}
	}
}

// RiskBadge classifies a red flag risk level.
func RiskBadge(level string) Tone {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "high":
		return ToneDanger
	case "medium":
		return ToneWarning
	default:
		return ToneSuccess
	}
}

// SeverityTier classifies a 0-5 red flag severity.
func SeverityTier(severity float64) Tone {
	switch {
	case severity > 3:
		return ToneDanger
	case severity > 1:
		return ToneWarning
	default:
		return ToneSuccess
	}
}

// PersonalityTier classifies a 0-100 personality trait score.
func PersonalityTier(score float64) Tone {
	switch {
	case score >= 80:
		return ToneSuccess
	case score >= 60:
		return ToneInfo
	case score >= 40:
		return ToneWarning
	default:
		return ToneSecondary
	}
}
