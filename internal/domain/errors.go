package domain

import "fmt"

// ErrorClass drives retry behaviour: only transient failures are retried.
type ErrorClass string

const (
	// ClassTransient covers failures expected to resolve on retry:
	// timeouts, rate limits, provider 5xx.
	ClassTransient ErrorClass = "transient"
	// ClassPermanent covers failures that will not resolve on retry:
	// invalid recipient, unsubscribed, rejected content.
	ClassPermanent ErrorClass = "permanent"
	// ClassValidation marks local pre-flight failures that never reached
	// the provider. Never retried.
	ClassValidation ErrorClass = "validation"
)

// Stable error codes recorded on failed log entries.
const (
	CodeInvalidRecipient = "invalid_recipient"
	CodeUnsubscribed     = "unsubscribed"
	CodeContentRejected  = "content_rejected"
	CodeRateLimited      = "rate_limited"
	CodeTimeout          = "timeout"
	CodeProviderError    = "provider_error"
	CodeInboxError       = "inbox_error"
)

// ChannelError is a classified adapter failure.
type ChannelError struct {
	Code    string
	Message string
	Class   ErrorClass
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Retryable reports whether the retry wrapper may attempt again.
func (e *ChannelError) Retryable() bool {
	return e.Class == ClassTransient
}

func TransientError(code, format string, args ...any) *ChannelError {
	return &ChannelError{Code: code, Message: fmt.Sprintf(format, args...), Class: ClassTransient}
}

func PermanentError(code, format string, args ...any) *ChannelError {
	return &ChannelError{Code: code, Message: fmt.Sprintf(format, args...), Class: ClassPermanent}
}

func ValidationError(format string, args ...any) *ChannelError {
	return &ChannelError{Code: CodeInvalidRecipient, Message: fmt.Sprintf(format, args...), Class: ClassValidation}
}
