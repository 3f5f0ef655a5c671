package domain

// SuccessPolicy controls how per-channel outcomes aggregate into the
// overall result of one dispatch.
type SuccessPolicy string

const (
	// PolicyAny succeeds when at least one attempted channel succeeded.
	PolicyAny SuccessPolicy = "any"
	// PolicyAll succeeds only when every attempted channel succeeded.
	PolicyAll SuccessPolicy = "all"
)

// ChannelResult is the outcome of one adapter invocation. Immutable once
// produced.
type ChannelResult struct {
	Channel Channel `json:"channel"`
	Success bool    `json:"success"`
	// ProviderMessageID is the provider-assigned identifier, present only
	// on success. It correlates asynchronous delivery callbacks.
	ProviderMessageID string        `json:"provider_message_id,omitempty"`
	Err               *ChannelError `json:"-"`
	ErrorCode         string        `json:"error_code,omitempty"`
	ErrorMessage      string        `json:"error_message,omitempty"`
}

// SuccessResult builds a successful outcome for a channel.
func SuccessResult(ch Channel, providerMessageID string) ChannelResult {
	return ChannelResult{Channel: ch, Success: true, ProviderMessageID: providerMessageID}
}

// FailureResult builds a failed outcome carrying the classified error.
func FailureResult(ch Channel, err *ChannelError) ChannelResult {
	return ChannelResult{
		Channel:      ch,
		Success:      false,
		Err:          err,
		ErrorCode:    err.Code,
		ErrorMessage: err.Message,
	}
}

// CommunicationResult aggregates per-channel outcomes for one dispatch.
type CommunicationResult struct {
	Results map[Channel]ChannelResult `json:"results"`
	Success bool                      `json:"success"`
	// Skipped is set when the dispatch short-circuited on a domain
	// condition and no channel was touched.
	Skipped bool `json:"skipped,omitempty"`
}

// Aggregate computes the overall flag from the collected results.
// Under PolicyAny a dispatch fails only when every channel, the In-App
// write included, failed.
func Aggregate(results map[Channel]ChannelResult, policy SuccessPolicy) bool {
	if len(results) == 0 {
		return false
	}
	if policy == PolicyAll {
		for _, r := range results {
			if !r.Success {
				return false
			}
		}
		return true
	}
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}
