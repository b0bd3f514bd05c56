package generation

import "math"

// Provider identifiers accepted in generation requests.
const (
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderXAI       = "xai"
	ProviderAnthropic = "anthropic"
)

// Defaults applied when a request does not pick a provider or model.
const (
	DefaultProvider = ProviderOpenAI
	DefaultModel    = "gpt-5.2"
)

// Model describes one selectable model of a provider. Prices are USD per one
// million tokens and feed the cost figure reported with each generation.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	InputPrice  float64
	OutputPrice float64
}

// ProviderInfo describes a provider and its selectable models.
type ProviderInfo struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Models      []Model `json:"models"`
}

// providerTable lists every supported provider with its models, newest first.
// The first model of each provider is its default.
var providerTable = []ProviderInfo{
	{
		ID:          ProviderOpenAI,
		DisplayName: "OpenAI",
		Models: []Model{
			{ID: "gpt-5.2", Name: "GPT-5.2", InputPrice: 1.25, OutputPrice: 10.00},
			{ID: "gpt-5-mini", Name: "GPT-5 Mini", InputPrice: 0.25, OutputPrice: 2.00},
			{ID: "gpt-5-nano", Name: "GPT-5 Nano", InputPrice: 0.05, OutputPrice: 0.40},
			{ID: "gpt-4.1", Name: "GPT-4.1", InputPrice: 2.00, OutputPrice: 8.00},
		},
	},
	{
		ID:          ProviderGoogle,
		DisplayName: "Google",
		Models: []Model{
			{ID: "gemini-3-pro-review", Name: "Gemini 3 Pro", InputPrice: 2.00, OutputPrice: 12.00},
			{ID: "gemini-3-flash-preview", Name: "Gemini 3 Flash", InputPrice: 0.50, OutputPrice: 3.00},
			{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", InputPrice: 0.30, OutputPrice: 2.50},
			{ID: "gemini-2.5-flash-lite", Name: "Gemini 2.5 Flash Lite", InputPrice: 0.10, OutputPrice: 0.40},
		},
	},
	{
		ID:          ProviderXAI,
		DisplayName: "xAI",
		Models: []Model{
			{ID: "grok-4-1-fast-reasoning", Name: "Grok 4.1 Fast Reasoning", InputPrice: 0.20, OutputPrice: 0.50},
			{ID: "grok-4-1-fast-non-reasoning", Name: "Grok 4.1 Fast Non-Reasoning", InputPrice: 0.20, OutputPrice: 0.50},
		},
	},
	{
		ID:          ProviderAnthropic,
		DisplayName: "Anthropic",
		Models: []Model{
			{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5", InputPrice: 3.00, OutputPrice: 15.00},
			{ID: "claude-haiku-4-5", Name: "Claude Haiku 4.5", InputPrice: 1.00, OutputPrice: 5.00},
			{ID: "claude-opus-4-5", Name: "Claude Opus 4.5", InputPrice: 5.00, OutputPrice: 25.00},
		},
	},
}

// Providers returns all supported providers in a stable order.
func Providers() []ProviderInfo {
	providers := make([]ProviderInfo, len(providerTable))
	copy(providers, providerTable)
	return providers
}

// IsSupportedProvider reports whether the identifier names a known provider.
func IsSupportedProvider(provider string) bool {
	for _, p := range providerTable {
		if p.ID == provider {
			return true
		}
	}
	return false
}

// ProviderDisplayName returns the human-readable provider name, or the
// identifier itself when the provider is unknown.
func ProviderDisplayName(provider string) string {
	for _, p := range providerTable {
		if p.ID == provider {
			return p.DisplayName
		}
	}
	return provider
}

// DefaultModelFor returns the default model ID of a provider, or empty when
// the provider is unknown.
func DefaultModelFor(provider string) string {
	for _, p := range providerTable {
		if p.ID == provider && len(p.Models) > 0 {
			return p.Models[0].ID
		}
	}
	return ""
}

// LookupModel finds a model in a provider's list.
func LookupModel(provider, modelID string) (Model, bool) {
	for _, p := range providerTable {
		if p.ID != provider {
			continue
		}
		for _, m := range p.Models {
			if m.ID == modelID {
				return m, true
			}
		}
	}
	return Model{}, false
}

// CostUSD prices a generation from its token counts, rounded to six decimal
// places. Unknown models cost zero; the usage numbers still get reported.
func CostUSD(provider, modelID string, promptTokens, completionTokens int) float64 {
	model, ok := LookupModel(provider, modelID)
	if !ok {
		return 0
	}

	cost := float64(promptTokens)/1e6*model.InputPrice +
		float64(completionTokens)/1e6*model.OutputPrice
	return math.Round(cost*1e6) / 1e6
}
