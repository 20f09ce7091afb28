package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ParticipantSessionKey returns the cache key for a participant's login session.
func (r *CacheKeyStruct) ParticipantSessionKey(participantID string) string {
	return fmt.Sprintf("login:participant:%s", participantID)
}

// ParticipantAnswersKey returns the cache key for a participant's autosaved answers.
func (r *CacheKeyStruct) ParticipantAnswersKey(quizID, participantID string) string {
	return fmt.Sprintf("participant:%s:quiz:%s:answers", participantID, quizID)
}

// ParticipantStartKey returns the cache key for a participant's attempt start time.
func (r *CacheKeyStruct) ParticipantStartKey(quizID, participantID string) string {
	return fmt.Sprintf("participant:%s:quiz:%s:started_at", participantID, quizID)
}

// QuizPaperKey returns the cache key for a quiz's participant-facing paper.
func (r *CacheKeyStruct) QuizPaperKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:paper", quizID)
}

// QuizAnswerKeyKey returns the cache key for a quiz's grading answer key.
func (r *CacheKeyStruct) QuizAnswerKeyKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:answer_key", quizID)
}

// QuizDurationKey returns the cache key for a quiz's duration in minutes.
func (r *CacheKeyStruct) QuizDurationKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:duration", quizID)
}

// QuizReportKey returns the cache key for a quiz's batch integrity report.
func (r *CacheKeyStruct) QuizReportKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:integrity_report", quizID)
}

// QuizMonitorChannel returns the Redis PubSub channel for a quiz's live monitor.
func (r *CacheKeyStruct) QuizMonitorChannel(quizID string) string {
	return fmt.Sprintf("quiz:%s:monitor", quizID)
}

var CacheKey = NewCacheKeyStruct()
