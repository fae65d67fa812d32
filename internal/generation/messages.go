package generation

import "errors"

const (
	MessageSafetyBlocked = "The AI blocked the generation due to safety concerns. Please try a different photo or description."
	MessageRateLimited   = "High Traffic: The AI usage limit has been reached. Please wait about 1 minute and try again."
	MessageGeneric       = "Failed to generate poster. Please try again."
)

// UserMessage is the text shown to a person when err ends a generation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindSafetyBlocked:
		return MessageSafetyBlocked
	case KindRateLimited:
		return MessageRateLimited
	}
	var ge *Error
	if errors.As(err, &ge) && ge.Err == nil {
		return MessageGeneric
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MessageGeneric
}
