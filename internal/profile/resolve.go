package profile

import "time"

// DefaultBaseURL is the standard local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// RequestTimeout bounds a single serving request. Cold model loads can
// take minutes on low-end hardware, so all tiers share one generous value.
const RequestTimeout = 300 * time.Second

// DefaultTemperature is the sampling temperature for chat generation.
const DefaultTemperature = 0.7

// Models by tier: smallest usable, balanced, highest quality.
const (
	ModelLow    = "gemma3:4b"
	ModelMedium = "llama2:7b"
	ModelHigh   = "mistral"
)

// Retry budgets by hosting classification. Static hosting runs with a
// tighter budget.
const (
	retryCountStatic  = 2
	retryCountDefault = 3
)

// ServingConfig holds the parameters for requests to the model server.
type ServingConfig struct {
	BaseURL     string        `json:"base_url"`
	Model       string        `json:"model"`
	RetryCount  int           `json:"retry_count"`
	RetryDelay  time.Duration `json:"retry_delay"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// ChatConfig holds the chat presentation parameters.
type ChatConfig struct {
	// MaxHistory is the number of prior messages kept in the prompt window.
	MaxHistory       int      `json:"max_history"`
	SuggestedPrompts []string `json:"suggested_prompts"`
	Welcome          string   `json:"welcome"`
}

// PerformanceConfig records the detected environment and request bounds.
type PerformanceConfig struct {
	Hosting        Hosting       `json:"hosting"`
	Tier           Tier          `json:"tier"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// EnvironmentConfig is the resolved operational configuration. It is
// computed once at process start and treated as read-only afterward;
// consumers receive it explicitly, there is no package-level instance.
type EnvironmentConfig struct {
	Serving     ServingConfig     `json:"serving"`
	Chat        ChatConfig        `json:"chat"`
	Performance PerformanceConfig `json:"performance"`
}

// tierParams is one resolver row.
type tierParams struct {
	model      string
	maxTokens  int
	maxHistory int
	retryDelay time.Duration
}

var tierTable = map[Tier]tierParams{
	TierLow:    {model: ModelLow, maxTokens: 300, maxHistory: 5, retryDelay: 2000 * time.Millisecond},
	TierMedium: {model: ModelMedium, maxTokens: 500, maxHistory: 10, retryDelay: 1500 * time.Millisecond},
	TierHigh:   {model: ModelHigh, maxTokens: 800, maxHistory: 15, retryDelay: 1000 * time.Millisecond},
}

// suggestedPrompts seed the chat input for a fresh session.
var suggestedPrompts = []string{
	"What is this document about?",
	"Summarize the key points",
	"What concepts should I learn first?",
	"How does this relate to the rest of the library?",
}

// welcomeText greets a new chat session.
const welcomeText = "Ask me anything about the documents in your library."

// Option overrides a resolved default.
type Option func(*EnvironmentConfig)

// WithBaseURL overrides the serving base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *EnvironmentConfig) {
		c.Serving.BaseURL = baseURL
	}
}

// WithModel overrides the tier-derived model choice.
func WithModel(model string) Option {
	return func(c *EnvironmentConfig) {
		c.Serving.Model = model
	}
}

// Resolve maps a memory tier and hosting classification to the full
// parameter bundle. The mapping is total: unrecognized tier values
// resolve with the medium row. Explicit options take precedence over
// tier-derived defaults. Resolve is pure and idempotent; equal inputs
// produce structurally equal configs.
func Resolve(tier Tier, hosting Hosting, opts ...Option) *EnvironmentConfig {
	params, ok := tierTable[tier]
	if !ok {
		tier = TierMedium
		params = tierTable[TierMedium]
	}

	retries := retryCountDefault
	if hosting == HostingStatic {
		retries = retryCountStatic
	}

	cfg := &EnvironmentConfig{
		Serving: ServingConfig{
			BaseURL:     DefaultBaseURL,
			Model:       params.model,
			RetryCount:  retries,
			RetryDelay:  params.retryDelay,
			MaxTokens:   params.maxTokens,
			Temperature: DefaultTemperature,
		},
		Chat: ChatConfig{
			MaxHistory:       params.maxHistory,
			SuggestedPrompts: append([]string(nil), suggestedPrompts...),
			Welcome:          welcomeText,
		},
		Performance: PerformanceConfig{
			Hosting:        hosting,
			Tier:           tier,
			RequestTimeout: RequestTimeout,
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
