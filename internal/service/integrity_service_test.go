package service

import (
	"testing"

	"github.com/quizhive/quizhive-backend/internal/integrity"
	"github.com/quizhive/quizhive-backend/internal/model"
)

func TestNonNilCohortWidensNilSlices(t *testing.T) {
	cohort, questions := nonNilCohort(nil, nil)
	if cohort == nil || questions == nil {
		t.Fatalf("nonNilCohort(nil, nil) = %v, %v, want non-nil slices", cohort, questions)
	}
	if len(cohort) != 0 || len(questions) != 0 {
		t.Errorf("want empty slices, got %d submissions, %d questions", len(cohort), len(questions))
	}
}

func TestEmptyQuizProducesEmptyReport(t *testing.T) {
	// Repositories return nil slices for quizzes with no rows. That is a
	// valid empty report, not a missing-input error.
	cohort, questions := nonNilCohort(nil, nil)

	report, err := integrity.BuildBatchReport(cohort, questions)
	if err != nil {
		t.Fatalf("BuildBatchReport: %v", err)
	}
	if report.TotalSubmissions != 0 || report.FlaggedSubmissions != 0 {
		t.Errorf("report = %+v, want zero totals", report)
	}
	if len(report.Reports) != 0 {
		t.Errorf("reports = %v, want none", report.Reports)
	}
}

func TestNonNilCohortPreservesExistingSlices(t *testing.T) {
	in := []*model.Submission{{ParticipantName: "solo"}}
	qs := []model.Question{{OrderNum: 0}}

	cohort, questions := nonNilCohort(in, qs)
	if len(cohort) != 1 || cohort[0].ParticipantName != "solo" {
		t.Errorf("cohort altered: %+v", cohort)
	}
	if len(questions) != 1 {
		t.Errorf("questions altered: %+v", questions)
	}
}
