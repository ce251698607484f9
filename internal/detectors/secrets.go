package detectors

import "github.com/tracewall/sentinel/internal/engine"

// Secrets returns the built-in credential/token detectors, adapted from
// guard/internal/engine/detectors (the header-scoped Authorization/X-API-Key
// patterns) with the generic high-entropy token shape borrowed from
// laplaque's apiKey pattern.
func Secrets() []engine.Detector {
	return []engine.Detector{
		{
			ID: "http_bearer_header", Category: engine.CategorySecret, Kind: engine.KindRegex,
			PatternSource: `(?i)Authorization:\s*Bearer\s+[A-Za-z0-9\-_.]+`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			TypeLabel:     "AUTH",
			MinConfidence: 30,
		},
		{
			ID: "http_api_key_header", Category: engine.CategorySecret, Kind: engine.KindRegex,
			PatternSource: `(?i)X-API-Key:\s*sk_(?:live|test)_[A-Za-z0-9]+`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			TypeLabel:     "API_KEY",
			MinConfidence: 30,
		},
		{
			ID: "stripe_style_api_key", Category: engine.CategorySecret, Kind: engine.KindRegex,
			PatternSource: `\bsk_(?:live|test)_[A-Za-z0-9]{10,}\b`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			TypeLabel:     "API_KEY",
			MinConfidence: 30,
		},
		{
			ID: "bearer_token_bare", Category: engine.CategorySecret, Kind: engine.KindRegex,
			PatternSource: `\bBearer\s+[A-Za-z0-9\-_.]{10,}\b`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			TypeLabel:     "AUTH",
			MinConfidence: 30,
		},
		{
			ID: "generic_secret_assignment", Category: engine.CategorySecret, Kind: engine.KindRegex,
			PatternSource: `(?i)(?:api[_\-]?key|secret|token|password)\s*[:=]\s*['"]?[A-Za-z0-9_\-./+]{16,}['"]?`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			TypeLabel:     "SECRET",
			MinConfidence: 40,
		},
		{
			ID: "cookie_sensitive_value", Category: engine.CategorySecret, Kind: engine.KindRegex,
			PatternSource: `(?i)(?:session_token|auth_token|csrf_token|secret|password|apikey)=[A-Za-z0-9_\-]{3,}`,
			Risk:          engine.RiskMedium,
			DefaultAction: engine.ActionMask,
			MaskerID:      "cookie_value",
			TypeLabel:     "SESSION_COOKIE",
			MinConfidence: 30,
		},
	}
}
