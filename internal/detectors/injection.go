package detectors

import "github.com/tracewall/sentinel/internal/engine"

// Injection returns the built-in prompt-injection and jailbreak detectors,
// each carrying one regex from guard/internal/engine/detectors'
// promptInjectionPatterns/jailbreakPatterns tables. Each detector is scoped
// to a single InjectionCategory, carried as a label on the detector (the
// resolver does not read it); guard's version instead keeps one
// best-confidence-wins detector per whole category.
func Injection() []engine.Detector {
	return []engine.Detector{
		{
			ID: "injection_ignore_instructions", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)ignore\s+(all\s+)?(previous|above)\s+instructions`,
			Risk:           engine.RiskHigh,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_override",
			TypeLabel:      "INSTRUCTION_OVERRIDE",
			InjectionClass: engine.InjectionInstructionOverride,
			MinConfidence:  40,
		},
		{
			ID: "injection_disregard_instructions", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions|rules|guidelines)`,
			Risk:           engine.RiskHigh,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_override",
			TypeLabel:      "INSTRUCTION_OVERRIDE",
			InjectionClass: engine.InjectionInstructionOverride,
			MinConfidence:  40,
		},
		{
			ID: "injection_forget_instructions", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)forget\s+(all\s+)?(previous|prior|above)\s+(instructions|context)`,
			Risk:           engine.RiskMedium,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_override",
			TypeLabel:      "INSTRUCTION_OVERRIDE",
			InjectionClass: engine.InjectionInstructionOverride,
			MinConfidence:  40,
		},
		{
			ID: "injection_identity_override", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)from\s+now\s+on\s+you\s+(are|will|must|should)|your\s+new\s+(role|identity|persona|instructions)\s+(is|are)`,
			Risk:           engine.RiskMedium,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_override",
			TypeLabel:      "INSTRUCTION_OVERRIDE",
			InjectionClass: engine.InjectionInstructionOverride,
			MinConfidence:  40,
		},
		{
			ID: "injection_delimiter_system_tag", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)\[SYSTEM\]|<\|im_start\|>system|###\s*(SYSTEM|INSTRUCTION|NEW INSTRUCTION)|BEGININSTRUCTION|---\s*(system|instruction)\s*(prompt|message)?`,
			Risk:           engine.RiskHigh,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_delimiter",
			TypeLabel:      "DELIMITER_INJECTION",
			InjectionClass: engine.InjectionDelimiter,
			MinConfidence:  40,
		},
		{
			ID: "injection_override_safety", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)override\s+(system|safety|security)\s+(prompt|instructions|rules|policy)|bypass\s+(the\s+)?(safety|security|content)\s+(filter|check|policy|rules)|do\s+not\s+follow\s+(your|the|any)\s+(rules|guidelines|instructions|safety)`,
			Risk:           engine.RiskHigh,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_override",
			TypeLabel:      "INSTRUCTION_OVERRIDE",
			InjectionClass: engine.InjectionInstructionOverride,
			MinConfidence:  40,
		},
		{
			ID: "injection_system_prompt_extraction", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)reveal\s+(your|the)\s+(system|initial|original|hidden)\s+(prompt|instructions|message)|what\s+(are|is|were)\s+your\s+(system|initial|original|hidden)\s+(prompt|instructions|rules)|output\s+(your|the)\s+(system|initial|original)\s+(prompt|instructions|message)|tell\s+me\s+your\s+(system|initial|original|hidden)\s+(prompt|instructions)`,
			Risk:           engine.RiskHigh,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_extraction",
			TypeLabel:      "INFO_EXTRACTION",
			InjectionClass: engine.InjectionInfoExtraction,
			MinConfidence:  40,
		},
		{
			ID: "jailbreak_dan", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)\bDAN\b.*\bdo\s+anything\s+now\b|you\s+are\s+DAN|DAN\s+mode\s+(enabled|activated|on)|enable\s+DAN\s+mode`,
			Risk:           engine.RiskHigh,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_jailbreak",
			TypeLabel:      "JAILBREAK",
			InjectionClass: engine.InjectionJailbreak,
			MinConfidence:  40,
		},
		{
			ID: "jailbreak_developer_mode", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)enter\s+(developer|debug|maintenance|god|sudo)\s+mode|(developer|debug|maintenance|god|sudo)\s+mode\s+(enabled|activated|on)|unlock\s+(all\s+)?(restrictions|capabilities|limitations)`,
			Risk:           engine.RiskMedium,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_jailbreak",
			TypeLabel:      "JAILBREAK",
			InjectionClass: engine.InjectionJailbreak,
			MinConfidence:  40,
		},
		{
			ID: "jailbreak_roleplay", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)roleplay\s+as\s+(an?\s+)?(evil|unfiltered|unrestricted|uncensored)|you\s+have\s+no\s+(restrictions|rules|limitations|guidelines|filters)|without\s+(any\s+)?(ethical|moral|safety)\s+(guidelines|restrictions|constraints|considerations)`,
			Risk:           engine.RiskMedium,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_jailbreak",
			TypeLabel:      "JAILBREAK",
			InjectionClass: engine.InjectionJailbreak,
			MinConfidence:  40,
		},
		{
			ID: "jailbreak_keyword", Category: engine.CategoryInjection, Kind: engine.KindRegex,
			PatternSource:  `(?i)\bjailbreak\b|\buncensored\s+mode\b`,
			Risk:           engine.RiskMedium,
			DefaultAction:  engine.ActionMask,
			MaskerID:       "sanitize_jailbreak",
			TypeLabel:      "JAILBREAK",
			InjectionClass: engine.InjectionJailbreak,
			MinConfidence:  30,
		},
	}
}
