package integrity

import (
	"errors"
	"testing"
	"time"

	"github.com/quizhive/quizhive-backend/internal/model"
)

func TestBuildBatchReportMissingInput(t *testing.T) {
	if _, err := BuildBatchReport(nil, questionList(1)); !errors.Is(err, ErrMissingInput) {
		t.Errorf("nil submissions: err = %v, want ErrMissingInput", err)
	}
	if _, err := BuildBatchReport([]*model.Submission{}, nil); !errors.Is(err, ErrMissingInput) {
		t.Errorf("nil questions: err = %v, want ErrMissingInput", err)
	}
}

func TestBuildBatchReportEmpty(t *testing.T) {
	report, err := BuildBatchReport([]*model.Submission{}, questionList(3))
	if err != nil {
		t.Fatalf("BuildBatchReport: %v", err)
	}
	if report.TotalSubmissions != 0 || report.FlaggedSubmissions != 0 || len(report.Reports) != 0 {
		t.Errorf("empty report = %+v, want zero counts", report)
	}
}

func TestBuildBatchReportOrderingAndCounts(t *testing.T) {
	base := time.Now()
	fast := 5.0
	normal := 400.0

	// Two colluders with identical answers plus superhuman typing: their
	// overall score crosses the suspicion threshold.
	colluderTyping := func() *model.TypingTelemetry {
		return &model.TypingTelemetry{
			QuestionSpeeds: []float64{700, 700, 700},
			Pauses:         model.PausePattern{LongPauses: 3, AvgPauseSeconds: 5},
			AnswerChanges:  []int{1, 1, 1},
			TotalSeconds:   50,
			TotalQuestions: 3,
		}
	}

	colluderA := newSubmission("colluder-a", shortAnswers("p", "q", "r"))
	colluderA.CompletionSeconds = &normal
	colluderA.Typing = colluderTyping()

	colluderB := newSubmission("colluder-b", shortAnswers("p", "q", "r"))
	colluderB.CompletionSeconds = &normal
	colluderB.Typing = colluderTyping()

	rusher := newSubmission("rusher", shortAnswers("a", "b", "c"))
	rusher.CompletionSeconds = &fast
	rusher.SubmittedAt = base.Add(-time.Hour)

	clean := newSubmission("clean", shortAnswers("d", "e", "f"))
	clean.CompletionSeconds = &normal
	clean.SubmittedAt = base.Add(-2 * time.Hour)

	all := []*model.Submission{clean, rusher, colluderA, colluderB}
	report, err := BuildBatchReport(all, questionList(3))
	if err != nil {
		t.Fatalf("BuildBatchReport: %v", err)
	}

	if report.TotalSubmissions != 4 {
		t.Errorf("totalSubmissions = %d, want 4", report.TotalSubmissions)
	}

	// Descending order, stable for ties.
	for i := 1; i < len(report.Reports); i++ {
		if report.Reports[i-1].SuspicionScore < report.Reports[i].SuspicionScore {
			t.Errorf("reports out of order at %d: %f < %f",
				i, report.Reports[i-1].SuspicionScore, report.Reports[i].SuspicionScore)
		}
	}

	// Colluders: similarity 100, typing 75 -> round(50 + 22.5) = 73.
	if report.FlaggedSubmissions != 2 {
		t.Errorf("flaggedSubmissions = %d, want the two colluders", report.FlaggedSubmissions)
	}
	if report.Reports[0].ParticipantName != "colluder-a" || report.Reports[1].ParticipantName != "colluder-b" {
		t.Errorf("top reports = %s, %s, want colluder-a, colluder-b (stable tie order)",
			report.Reports[0].ParticipantName, report.Reports[1].ParticipantName)
	}
	for _, r := range report.Reports[:2] {
		if !r.IsSuspicious {
			t.Errorf("%s: isSuspicious = false, want true", r.ParticipantName)
		}
	}
	if report.Reports[3].ParticipantName != "clean" {
		t.Errorf("last report = %s, want clean", report.Reports[3].ParticipantName)
	}
}

func TestBuildBatchReportSkipsNilSubmissions(t *testing.T) {
	sub := newSubmission("alice", shortAnswers("a"))
	report, err := BuildBatchReport([]*model.Submission{nil, sub, nil}, questionList(1))
	if err != nil {
		t.Fatalf("BuildBatchReport: %v", err)
	}
	if report.TotalSubmissions != 1 || len(report.Reports) != 1 {
		t.Errorf("report = %+v, want exactly one analyzed submission", report)
	}
	if report.Reports[0].ParticipantID != sub.ParticipantID {
		t.Error("surviving report should belong to the non-nil submission")
	}
}
