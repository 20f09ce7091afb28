package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// Authorization
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrParticipantOnly ErrCode = "PARTICIPANT_ACCESS_ONLY"
	ErrHostOnly        ErrCode = "HOST_ACCESS_ONLY"
	ErrNotQuizOwner    ErrCode = "NOT_QUIZ_OWNER"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// Quiz-specific
	ErrQuizNotAvailable ErrCode = "QUIZ_NOT_AVAILABLE"
	ErrInvalidEntryCode ErrCode = "INVALID_ENTRY_CODE"
	ErrQuizNotDraft     ErrCode = "QUIZ_NOT_DRAFT"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrAnswerCount      ErrCode = "ANSWER_COUNT_MISMATCH"

	// Integrity
	ErrAnalysisPending ErrCode = "ANALYSIS_PENDING"

	// Rate limiting
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please join again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrParticipantOnly:
		return "This resource is restricted to quiz participants."
	case ErrHostOnly:
		return "This resource is restricted to quiz hosts."
	case ErrNotQuizOwner:
		return "You are not the host of this quiz."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrQuizNotAvailable:
		return "This quiz is not currently open."
	case ErrInvalidEntryCode:
		return "The quiz entry code is invalid."
	case ErrQuizNotDraft:
		return "This quiz is not in DRAFT status."
	case ErrNoQuestions:
		return "This quiz has no questions."
	case ErrAlreadySubmitted:
		return "You have already submitted this quiz."
	case ErrAnswerCount:
		return "The number of answers does not match the number of questions."
	case ErrAnalysisPending:
		return "The integrity analysis for this submission is still running."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
