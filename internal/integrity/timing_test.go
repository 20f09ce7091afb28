package integrity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/model"
)

func timedSubmission(name string, completion float64, submittedAt time.Time) *model.Submission {
	return &model.Submission{
		ID:                uuid.New(),
		ParticipantID:     uuid.New(),
		ParticipantName:   name,
		CompletionSeconds: &completion,
		SubmittedAt:       submittedAt,
	}
}

func secondsList(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}

func TestAnalyzeTimingFastCompletion(t *testing.T) {
	// 5 seconds for 10 questions is under the 2s/question floor.
	sub := timedSubmission("alice", 5, time.Now())

	score, issues := analyzeTiming(sub, []*model.Submission{sub}, 10)
	if score != 40 {
		t.Fatalf("score = %f, want 40", score)
	}
	if len(issues) != 1 || issues[0].Issue != "suspiciously fast completion" {
		t.Errorf("issues = %v, want the fast-completion flag", issues)
	}
}

func TestAnalyzeTimingMissingCompletionTime(t *testing.T) {
	sub := &model.Submission{
		ID:              uuid.New(),
		ParticipantID:   uuid.New(),
		ParticipantName: "alice",
		SubmittedAt:     time.Now(),
	}

	score, issues := analyzeTiming(sub, []*model.Submission{sub}, 10)
	if score != 0 || len(issues) != 0 {
		t.Errorf("missing completion time: score = %f, issues = %v, want 0, none", score, issues)
	}
}

func TestAnalyzeTimingCohortOutlier(t *testing.T) {
	base := time.Now()
	// Peers cluster around 300s with a small spread.
	peers := []*model.Submission{
		timedSubmission("p1", 290, base.Add(-10*time.Minute)),
		timedSubmission("p2", 300, base.Add(-8*time.Minute)),
		timedSubmission("p3", 310, base.Add(-6*time.Minute)),
		timedSubmission("p4", 300, base.Add(-4*time.Minute)),
	}

	fast := timedSubmission("speedy", 120, base)
	all := append([]*model.Submission{fast}, peers...)
	score, _ := analyzeTiming(fast, all, 10)
	if score != 30 {
		t.Errorf("fast outlier score = %f, want 30", score)
	}

	slow := timedSubmission("slowpoke", 900, base)
	all = append([]*model.Submission{slow}, peers...)
	score, _ = analyzeTiming(slow, all, 10)
	if score != 15 {
		t.Errorf("slow outlier score = %f, want 15", score)
	}

	// Inside two sigma: no contribution.
	typical := timedSubmission("typical", 305, base)
	all = append([]*model.Submission{typical}, peers...)
	score, _ = analyzeTiming(typical, all, 10)
	if score != 0 {
		t.Errorf("typical time score = %f, want 0", score)
	}
}

func TestAnalyzeTimingCohortTooSmall(t *testing.T) {
	base := time.Now()
	// Two peers are below the 3-peer minimum; the outlier rule stays off.
	peers := []*model.Submission{
		timedSubmission("p1", 300, base.Add(-10*time.Minute)),
		timedSubmission("p2", 305, base.Add(-8*time.Minute)),
	}

	fast := timedSubmission("speedy", 30, base)
	all := append([]*model.Submission{fast}, peers...)
	score, _ := analyzeTiming(fast, all, 10)
	if score != 0 {
		t.Errorf("score = %f, want 0 with a too-small cohort", score)
	}
}

func TestAnalyzeTimingUniformPacing(t *testing.T) {
	sub := timedSubmission("alice", 300, time.Now())
	// Six near-identical question times: variance ~0 against a 5s mean.
	sub.QuestionSeconds = secondsList(5, 5, 5, 5, 5, 5)

	score, issues := analyzeTiming(sub, []*model.Submission{sub}, 6)
	if score != 25 {
		t.Errorf("score = %f, want 25 (issues %v)", score, issues)
	}
}

func TestAnalyzeTimingInstantAnswers(t *testing.T) {
	sub := timedSubmission("alice", 300, time.Now())
	// 3 of 6 question times under a second: 50% > 30%.
	sub.QuestionSeconds = secondsList(0.4, 0.5, 0.3, 20, 35, 50)

	score, issues := analyzeTiming(sub, []*model.Submission{sub}, 6)
	if score != 35 {
		t.Errorf("score = %f, want 35 (issues %v)", score, issues)
	}
}

func TestAnalyzeTimingFewQuestionTimesIgnored(t *testing.T) {
	sub := timedSubmission("alice", 300, time.Now())
	// Five entries do not clear the >5 bar; pacing rules stay off.
	sub.QuestionSeconds = secondsList(5, 5, 5, 5, 5)

	score, _ := analyzeTiming(sub, []*model.Submission{sub}, 5)
	if score != 0 {
		t.Errorf("score = %f, want 0 with only 5 question times", score)
	}
}

func TestAnalyzeTimingSimultaneousSubmissions(t *testing.T) {
	base := time.Now()
	sub := timedSubmission("alice", 300, base)
	peers := []*model.Submission{
		timedSubmission("p1", 310, base.Add(2*time.Second)),
		timedSubmission("p2", 295, base.Add(-3*time.Second)),
	}

	all := append([]*model.Submission{sub}, peers...)
	score, issues := analyzeTiming(sub, all, 10)
	if score != 20 {
		t.Errorf("score = %f, want 20 (issues %v)", score, issues)
	}

	// A single nearby peer is not coordination.
	all = []*model.Submission{sub, peers[0]}
	score, _ = analyzeTiming(sub, all, 10)
	if score != 0 {
		t.Errorf("score = %f, want 0 with a single nearby peer", score)
	}
}
