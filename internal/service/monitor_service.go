package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/quizhive/quizhive-backend/internal/repository"
)

// MonitorService orchestrates the host's live quiz view.
type MonitorService struct {
	monitorRepo     *repository.MonitorRepository
	participantRepo *repository.ParticipantRepository
	submissionRepo  *repository.SubmissionRepository
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(
	monitorRepo *repository.MonitorRepository,
	participantRepo *repository.ParticipantRepository,
	submissionRepo *repository.SubmissionRepository,
) *MonitorService {
	return &MonitorService{
		monitorRepo:     monitorRepo,
		participantRepo: participantRepo,
		submissionRepo:  submissionRepo,
	}
}

// ProgressSnapshot holds answered counts and integrity flag counts for every
// participant of a quiz.
type ProgressSnapshot struct {
	AnsweredCounts map[uuid.UUID]int64 // participant_id → autosaved answer count
	FlagCounts     map[uuid.UUID]int64 // participant_id → integrity flag count
	TotalFlags     int64               // total flags across the quiz
}

// GetProgress returns answered counts and flag counts concurrently. Both
// fetches are independent queries, so they run in parallel.
func (s *MonitorService) GetProgress(ctx context.Context, quizID uuid.UUID) (*ProgressSnapshot, error) {
	snapshot := &ProgressSnapshot{
		AnsweredCounts: make(map[uuid.UUID]int64),
		FlagCounts:     make(map[uuid.UUID]int64),
	}

	var (
		answeredCounts map[uuid.UUID]int64
		flagCounts     map[uuid.UUID]int64
		answeredErr    error
		flagErr        error
		wg             sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		answeredCounts, answeredErr = s.monitorRepo.GetAnsweredCounts(ctx, quizID)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		flagCounts, flagErr = s.monitorRepo.GetFlaggedCounts(ctx, quizID)
	}()

	wg.Wait()

	// Answered counts are critical; flag counts are best-effort.
	if answeredErr != nil {
		return nil, answeredErr
	}

	if answeredCounts != nil {
		snapshot.AnsweredCounts = answeredCounts
	}

	if flagErr == nil && flagCounts != nil {
		snapshot.FlagCounts = flagCounts
		for _, count := range flagCounts {
			snapshot.TotalFlags += count
		}
	}

	return snapshot, nil
}

// RosterStatus is a participant's place in the attempt lifecycle.
type RosterStatus string

const (
	RosterStatusInProgress RosterStatus = "IN_PROGRESS"
	RosterStatusSubmitted  RosterStatus = "SUBMITTED"
)

// RosterEntry is one participant's row in the live monitor.
type RosterEntry struct {
	ParticipantID uuid.UUID    `json:"participant_id"`
	Name          string       `json:"name"`
	JoinedAt      time.Time    `json:"joined_at"`
	Status        RosterStatus `json:"status"`
	Score         *float64     `json:"score,omitempty"`
}

// GetRoster returns every participant of a quiz with their attempt status.
// Participants and submissions load concurrently.
func (s *MonitorService) GetRoster(ctx context.Context, quizID uuid.UUID) ([]RosterEntry, error) {
	var (
		participants []model.Participant
		submissions  []*model.Submission
		pErr, sErr   error
		wg           sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		participants, pErr = s.participantRepo.ListByQuiz(ctx, quizID)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		submissions, sErr = s.submissionRepo.ListByQuiz(ctx, quizID)
	}()

	wg.Wait()

	if pErr != nil {
		return nil, pErr
	}
	// Submissions are best-effort: a failed read shows everyone in progress.
	submitted := make(map[uuid.UUID]*model.Submission)
	if sErr == nil {
		for _, sub := range submissions {
			submitted[sub.ParticipantID] = sub
		}
	}

	roster := make([]RosterEntry, 0, len(participants))
	for _, p := range participants {
		entry := RosterEntry{
			ParticipantID: p.ID,
			Name:          p.Name,
			JoinedAt:      p.JoinedAt,
			Status:        RosterStatusInProgress,
		}
		if sub, ok := submitted[p.ID]; ok {
			entry.Status = RosterStatusSubmitted
			entry.Score = sub.Score
		}
		roster = append(roster, entry)
	}
	return roster, nil
}
