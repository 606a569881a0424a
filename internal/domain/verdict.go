package domain

import "encoding/json"

// VerdictSource records which stage of the profanity pipeline decided.
type VerdictSource string

const (
	VerdictSourceLocal VerdictSource = "local"
	VerdictSourceAI    VerdictSource = "ai"
	VerdictSourceNone  VerdictSource = "none"
)

// ModerationVerdict is the structured outcome of profanity evaluation.
type ModerationVerdict struct {
	Blocked      bool          `json:"blocked"`
	MatchedWords []string      `json:"matchedWords"`
	Source       VerdictSource `json:"source"`
}

// CleanVerdict is the verdict for text with no detected profanity.
func CleanVerdict() ModerationVerdict {
	return ModerationVerdict{Blocked: false, MatchedWords: []string{}, Source: VerdictSourceNone}
}

// Outcome is either Blocked or Clean(Text). On the wire a blocked outcome is
// the JSON literal false and a clean one is the text itself.
type Outcome struct {
	Blocked bool
	Text    string
}

// MarshalJSON implements json.Marshaler.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Blocked {
		return []byte("false"), nil
	}
	return json.Marshal(o.Text)
}

// legacyFalse is how older rows stored a blocked result.
const legacyFalse = "false"

// ModeratedResult is a stored moderation output as exposed by the API. The
// stored string "false" is rendered as JSON false; anything else verbatim.
type ModeratedResult string

// IsFalse reports whether r is the legacy boolean-false encoding.
func (r ModeratedResult) IsFalse() bool {
	return string(r) == legacyFalse
}

// MarshalJSON implements json.Marshaler.
func (r ModeratedResult) MarshalJSON() ([]byte, error) {
	if r.IsFalse() {
		return []byte("false"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts either a string or the boolean false.
func (r *ModeratedResult) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = ModeratedResult(s)
		return nil
	}
	var flag bool
	if err := json.Unmarshal(b, &flag); err != nil {
		return err
	}
	*r = ModeratedResult(legacyFalse)
	return nil
}
