package integrity

import (
	"testing"

	"github.com/quizhive/quizhive-backend/internal/model"
)

// healthyTelemetry returns telemetry that triggers no rules.
func healthyTelemetry() *model.TypingTelemetry {
	return &model.TypingTelemetry{
		QuestionSpeeds: []float64{40, 55, 48, 62},
		Pauses:         model.PausePattern{LongPauses: 4, AvgPauseSeconds: 8},
		AnswerChanges:  []int{1, 0, 2, 1},
		TotalSeconds:   240,
		TotalQuestions: 4,
	}
}

func TestAnalyzeTypingNilTelemetry(t *testing.T) {
	score, issues := analyzeTyping(nil)
	if score != 0 || issues != nil {
		t.Errorf("nil telemetry: score = %f, issues = %v, want 0, nil", score, issues)
	}
}

func TestAnalyzeTypingHealthy(t *testing.T) {
	score, issues := analyzeTyping(healthyTelemetry())
	if score != 0 {
		t.Errorf("healthy telemetry: score = %f (issues %v), want 0", score, issues)
	}
}

func TestAnalyzeTypingRules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.TypingTelemetry)
		wantScore float64
	}{
		{
			name: "too slow",
			mutate: func(tt *model.TypingTelemetry) {
				tt.QuestionSpeeds = []float64{4, 6, 5, 5}
			},
			wantScore: 30,
		},
		{
			name: "beyond human speed",
			mutate: func(tt *model.TypingTelemetry) {
				tt.QuestionSpeeds = []float64{520, 700, 540, 660}
			},
			wantScore: 40,
		},
		{
			name: "uniform fast speed",
			mutate: func(tt *model.TypingTelemetry) {
				// Mean 150, stddev well below 15: scripted input.
				tt.QuestionSpeeds = []float64{149, 151, 150, 150}
			},
			wantScore: 35,
		},
		{
			name: "too few pauses",
			mutate: func(tt *model.TypingTelemetry) {
				tt.Pauses.LongPauses = 1
				tt.TotalSeconds = 90
			},
			wantScore: 25,
		},
		{
			name: "pauses too long",
			mutate: func(tt *model.TypingTelemetry) {
				tt.Pauses.AvgPauseSeconds = 45
			},
			wantScore: 20,
		},
		{
			name: "never revised",
			mutate: func(tt *model.TypingTelemetry) {
				tt.AnswerChanges = []int{0, 0, 0, 0}
			},
			wantScore: 30,
		},
		{
			name: "excessive revisions",
			mutate: func(tt *model.TypingTelemetry) {
				tt.AnswerChanges = []int{8, 7, 4, 3} // 22 > 4*5
			},
			wantScore: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			telemetry := healthyTelemetry()
			tt.mutate(telemetry)

			score, issues := analyzeTyping(telemetry)
			if score != tt.wantScore {
				t.Errorf("score = %f, want %f (issues %v)", score, tt.wantScore, issues)
			}
			if len(issues) == 0 {
				t.Error("expected at least one issue")
			}
			for _, issue := range issues {
				if issue.Expected == "" {
					t.Errorf("issue %q missing expected-range description", issue.Issue)
				}
			}
		})
	}
}

// Superhuman mean of 600 WPM with a ~5 WPM spread triggers both the speed
// cap (+40) and the uniformity rule (+35): total 75.
func TestAnalyzeTypingFastAndUniform(t *testing.T) {
	telemetry := healthyTelemetry()
	telemetry.QuestionSpeeds = []float64{595, 605, 600, 600}

	score, issues := analyzeTyping(telemetry)
	if score != 75 {
		t.Errorf("score = %f, want 75", score)
	}
	if len(issues) != 2 {
		t.Errorf("issues = %d, want 2", len(issues))
	}
}

func TestAnalyzeTypingClamped(t *testing.T) {
	// Fast + uniform + no pauses + long avg pause + never revised:
	// 40 + 35 + 25 + 20 + 30 = 150, clamped to 100.
	telemetry := &model.TypingTelemetry{
		QuestionSpeeds: []float64{600, 600, 600, 600},
		Pauses:         model.PausePattern{LongPauses: 0, AvgPauseSeconds: 40},
		AnswerChanges:  []int{0, 0, 0, 0},
		TotalSeconds:   120,
		TotalQuestions: 4,
	}

	score, _ := analyzeTyping(telemetry)
	if score != 100 {
		t.Errorf("score = %f, want clamp at 100", score)
	}
}

func TestAnalyzeTypingNoSpeedSamples(t *testing.T) {
	// Missing speed samples must not trip the "too slow" rule.
	telemetry := healthyTelemetry()
	telemetry.QuestionSpeeds = nil

	score, _ := analyzeTyping(telemetry)
	if score != 0 {
		t.Errorf("score = %f, want 0 when speeds are absent", score)
	}
}
