// Package detectors holds the built-in plugin detector contributions
// registered through the facade's Use contract (spec.md §4.1's plugin
// carve-out: "per-locale detector source code" is external to the kernel).
// Patterns are adapted from guard/internal/engine/detectors/pii.go (credit
// card/SSN/email/phone/IBAN) and laplaque's anonymizer.compilePatterns
// (IPv4/IPv6/street address), re-expressed as engine.Detector values instead
// of a standalone per-request scanner.
package detectors

import "github.com/tracewall/sentinel/internal/engine"

// PII returns the built-in personally-identifiable-information detectors.
func PII() []engine.Detector {
	return []engine.Detector{
		{
			ID: "ssn", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\b\d{3}-\d{2}-\d{4}\b`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			MaskerID:      "last4",
			TypeLabel:     "SSN",
			MinConfidence: 40,
		},
		{
			ID: "credit_card_visa", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\b4\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			MaskerID:      "last4",
			TypeLabel:     "CREDIT_CARD",
			MinConfidence: 40,
		},
		{
			ID: "credit_card_mastercard", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\b5[1-5]\d{2}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			MaskerID:      "last4",
			TypeLabel:     "CREDIT_CARD",
			MinConfidence: 40,
		},
		{
			ID: "credit_card_amex", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\b3[47]\d{2}[-\s]?\d{6}[-\s]?\d{5}\b`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			MaskerID:      "last4",
			TypeLabel:     "CREDIT_CARD",
			MinConfidence: 40,
		},
		{
			ID: "credit_card_discover", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\b6011[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			MaskerID:      "last4",
			TypeLabel:     "CREDIT_CARD",
			MinConfidence: 40,
		},
		{
			ID: "email", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`,
			Risk:          engine.RiskMedium,
			DefaultAction: engine.ActionMask,
			TypeLabel:     "EMAIL",
			MinConfidence: 40,
		},
		{
			ID: "phone_us", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `(\+1[-\s]?)?\(?\d{3}\)?[-\s.]?\d{3}[-\s.]?\d{4}\b`,
			Risk:          engine.RiskMedium,
			DefaultAction: engine.ActionMask,
			MaskerID:      "bullet",
			TypeLabel:     "PHONE",
			MinConfidence: 30,
		},
		{
			ID: "phone_intl", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\+\d{1,3}[-\s]?\d{1,4}[-\s]?\d{3,4}[-\s]?\d{3,4}\b`,
			Risk:          engine.RiskMedium,
			DefaultAction: engine.ActionMask,
			MaskerID:      "bullet",
			TypeLabel:     "PHONE",
			MinConfidence: 30,
		},
		{
			ID: "phone_jp", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\d{2,4}-\d{3,4}-\d{4}`,
			Risk:          engine.RiskMedium,
			DefaultAction: engine.ActionMask,
			MaskerID:      "bullet",
			TypeLabel:     "PHONE",
			ContextHints:  []string{"電話", "TEL", "Tel"},
			MinConfidence: 30,
		},
		{
			ID: "postal_jp", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\d{3}-\d{4}`,
			Risk:          engine.RiskMedium,
			DefaultAction: engine.ActionMask,
			MaskerID:      "bullet",
			TypeLabel:     "POSTAL_CODE",
			ContextHints:  []string{"〒", "住所"},
			MinConfidence: 30,
		},
		{
			ID: "zip_us", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\b\d{5}(?:-\d{4})?\b`,
			Risk:          engine.RiskLow,
			DefaultAction: engine.ActionMask,
			MaskerID:      "bullet",
			TypeLabel:     "ZIP",
			ContextHints:  []string{"ZIP", "zip code", "postal"},
			MinConfidence: 30,
		},
		{
			ID: "iban", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\b[A-Z]{2}\d{2}[-\s]?[A-Z0-9]{4}[-\s]?(?:[A-Z0-9]{4}[-\s]?){1,7}[A-Z0-9]{1,4}\b`,
			Risk:          engine.RiskHigh,
			DefaultAction: engine.ActionMask,
			MaskerID:      "last4",
			TypeLabel:     "IBAN",
			MinConfidence: 40,
		},
		{
			ID: "ipv4", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`,
			Risk:          engine.RiskMedium,
			DefaultAction: engine.ActionMask,
			TypeLabel:     "IP_ADDRESS",
			MinConfidence: 30,
		},
		{
			ID: "ipv6", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}` +
				`|(?:[0-9a-fA-F]{1,4}:){1,7}:` +
				`|(?:[0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}` +
				`|(?:[0-9a-fA-F]{1,4}:){1,5}(?::[0-9a-fA-F]{1,4}){1,2}` +
				`|(?:[0-9a-fA-F]{1,4}:){1,4}(?::[0-9a-fA-F]{1,4}){1,3}` +
				`|(?:[0-9a-fA-F]{1,4}:){1,3}(?::[0-9a-fA-F]{1,4}){1,4}` +
				`|(?:[0-9a-fA-F]{1,4}:){1,2}(?::[0-9a-fA-F]{1,4}){1,5}` +
				`|[0-9a-fA-F]{1,4}:(?::[0-9a-fA-F]{1,4}){1,6}` +
				`|:(?::[0-9a-fA-F]{1,4}){1,7}` +
				`|::`,
			Risk:          engine.RiskMedium,
			DefaultAction: engine.ActionMask,
			TypeLabel:     "IP_ADDRESS",
			MinConfidence: 30,
		},
		{
			ID: "street_address", Category: engine.CategoryPII, Kind: engine.KindRegex,
			PatternSource: `(?i)\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct)\b`,
			Risk:          engine.RiskMedium,
			DefaultAction: engine.ActionMask,
			TypeLabel:     "ADDRESS",
			MinConfidence: 30,
		},
	}
}
