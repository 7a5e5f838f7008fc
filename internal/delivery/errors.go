package delivery

import "fmt"

// ValidationKind classifies a rejected request.
type ValidationKind string

const (
	// KindMissingParameter marks a required common parameter that was absent.
	KindMissingParameter ValidationKind = "missing_parameter"
	// KindConflictingChannels marks a request selecting both delivery channels.
	KindConflictingChannels ValidationKind = "conflicting_channels"
	// KindMissingChannelCredential marks a selected channel whose credential
	// or address was absent.
	KindMissingChannelCredential ValidationKind = "missing_channel_credential"
)

// ValidationError rejects a request before any pipeline stage runs. Handlers
// map it to a 400 response.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func missingParameter(field, message string) *ValidationError {
	return &ValidationError{Kind: KindMissingParameter, Field: field, Message: message}
}

func missingCredential(field, message string) *ValidationError {
	return &ValidationError{Kind: KindMissingChannelCredential, Field: field, Message: message}
}

// ChannelDeliveryError reports a failure while publishing through the
// resolved channel, after content generation succeeded.
type ChannelDeliveryError struct {
	Channel Channel
	Err     error
}

func (e *ChannelDeliveryError) Error() string {
	switch e.Channel {
	case ChannelLinkedIn:
		return fmt.Sprintf("failed to post to LinkedIn: %v", e.Err)
	case ChannelEmail:
		return fmt.Sprintf("failed to send email: %v", e.Err)
	}
	return fmt.Sprintf("failed to deliver via %s: %v", e.Channel, e.Err)
}

func (e *ChannelDeliveryError) Unwrap() error { return e.Err }
