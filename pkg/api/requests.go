package api

const (
	// DefaultLength is the max token count used when a request does not set one.
	DefaultLength = 1000
	// DefaultCreativity maps to a temperature of 0.7.
	DefaultCreativity = 70.0
)

type ChatRequest struct {
	// message array is required, dive in and deep validate
	Messages []ChatMessage `json:"messages" binding:"required,min=1,dive"`

	// provider id such as "claude" or "groq"; unknown or empty ids fall back to the mock provider
	Provider string `json:"provider,omitempty"`

	Options GenerationOptions `json:"options"`
}

type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required,notblank"`
}

// GenerationOptions carries the front-end knobs. Pointers distinguish "unset" from zero.
type GenerationOptions struct {
	Length     *int     `json:"length,omitempty" binding:"omitempty,gt=0"`
	Creativity *float64 `json:"creativity,omitempty" binding:"omitempty,gte=0,lte=100"`

	// Streaming is accepted for compatibility with the front-end but responses are always unary.
	Streaming bool `json:"streaming,omitempty"`
}

// MaxTokens returns the requested length or def when unset.
func (o GenerationOptions) MaxTokens(def int) int {
	if o.Length == nil || *o.Length <= 0 {
		return def
	}
	return *o.Length
}

// Temperature maps creativity (0-100) onto a 0-1 sampling temperature.
func (o GenerationOptions) Temperature() float64 {
	if o.Creativity == nil {
		return DefaultCreativity / 100
	}
	return *o.Creativity / 100
}

// LastContent returns the text of the final message, or "" for an empty conversation.
func LastContent(messages []ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content
}

// Message roles. ModelAssistant is Gemini's name for the assistant turn.
const (
	User           = "user"
	Assistant      = "assistant"
	System         = "system"
	ModelAssistant = "model"
)
