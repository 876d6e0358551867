package errors

const (
	TimeoutMessage = "Request timed out. Please try again."
	NetworkMessage = "Network error. Please check your connection."
)

// StatusMessages maps backend HTTP statuses to user-facing text for a
// single action, used when the backend sent no message of its own.
type StatusMessages map[int]string

// UserMessage picks the text shown to the user for a failed action: local
// rejections keep their own message, backend failures use the backend
// message, then a per-status message, then fallback.
func UserMessage(err error, fallback string, byStatus StatusMessages) string {
	if err == nil {
		return ""
	}

	appErr, ok := AsAppError(err)
	if !ok {
		return fallback
	}

	if appErr.Status == 0 {
		switch appErr.Code {
		case ErrCodeTimeout:
			return TimeoutMessage
		case ErrCodeNetwork:
			return NetworkMessage
		case ErrCodePreconditionFailed, ErrCodeValidation, ErrCodeMissingRequired, ErrCodeInvalidInput:
			return appErr.Message
		}
		return fallback
	}

	if appErr.HasBackendMessage() {
		return appErr.Message
	}
	if msg, ok := byStatus[appErr.Status]; ok {
		return msg
	}
	if appErr.Code == ErrCodeTimeout {
		return TimeoutMessage
	}
	return fallback
}
