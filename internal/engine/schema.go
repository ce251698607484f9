package engine

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSON schemas for the three wire documents from §6. Validated the same
// way services/tool_guard validates tool argument schemas: decode to `any`,
// register as an in-memory resource, compile, validate.
const policySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["defaultAction"],
  "properties": {
    "defaultAction": {"enum": ["mask", "remove", "tokenize", "ignore"]},
    "rules": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "action": {"enum": ["mask", "remove", "tokenize", "ignore"]},
          "minConfidence": {"type": "integer", "minimum": 0, "maximum": 100},
          "maskerId": {"type": "string"}
        }
      }
    },
    "contextHints": {"type": "array", "items": {"type": "string"}},
    "hmacKey": {"type": "string"}
  }
}`

const manifestSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["dicts"],
  "properties": {
    "dicts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "url"],
        "properties": {
          "id": {"type": "string"},
          "url": {"type": "string"}
        }
      }
    }
  }
}`

const dictionarySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["entries"],
  "properties": {
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["pattern", "type", "risk"],
        "properties": {
          "pattern": {"type": "string"},
          "type": {"type": "string"},
          "risk": {"enum": ["low", "medium", "high"]},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

func compileSchema(name, schemaJSON string) (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("engine: built-in schema %s malformed: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("engine: registering schema %s: %w", name, err)
	}
	return c.Compile(name)
}

var (
	policySchema, errPolicySchema         = compileSchema("policy.json", policySchemaJSON)
	manifestSchema, errManifestSchema     = compileSchema("manifest.json", manifestSchemaJSON)
	dictionarySchema, errDictionarySchema = compileSchema("dictionary.json", dictionarySchemaJSON)
)

// PolicyDocument mirrors the wire shape of §6's policy document.
type PolicyDocument struct {
	DefaultAction string                    `json:"defaultAction"`
	Rules         map[string]PolicyRuleDoc  `json:"rules"`
	ContextHints  []string                  `json:"contextHints"`
	HMACKey       string                    `json:"hmacKey"` // base64
}

type PolicyRuleDoc struct {
	Action        string `json:"action"`
	MinConfidence *int   `json:"minConfidence"`
	MaskerID      string `json:"maskerId"`
}

// ManifestDocument mirrors §6's manifest document.
type ManifestDocument struct {
	Dicts []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"dicts"`
}

// DictionaryDocument mirrors §6's dictionary document.
type DictionaryDocument struct {
	Entries []DictionaryEntry `json:"entries"`
}

type DictionaryEntry struct {
	Pattern     string `json:"pattern"`
	Type        string `json:"type"`
	Risk        string `json:"risk"`
	Description string `json:"description"`
}

// ParsePolicyDocument validates raw JSON against the policy schema and
// converts it into an engine.Policy. Schema-invalid input returns
// ErrPolicyInvalid.
func ParsePolicyDocument(raw []byte) (*Policy, error) {
	if errPolicySchema != nil {
		return nil, fmt.Errorf("engine: policy schema unavailable: %w", errPolicySchema)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("engine: %w: %v", ErrPolicyInvalid, err)
	}
	if err := policySchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("engine: %w: %v", ErrPolicyInvalid, err)
	}

	var doc PolicyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("engine: %w: %v", ErrPolicyInvalid, err)
	}

	policy := &Policy{
		DefaultAction:      Action(doc.DefaultAction),
		ContextHintsGlobal: doc.ContextHints,
		Rules:              make(map[string]PolicyRule, len(doc.Rules)),
	}
	for id, r := range doc.Rules {
		policy.Rules[id] = PolicyRule{
			Action:        Action(r.Action),
			MinConfidence: r.MinConfidence,
			MaskerID:      r.MaskerID,
		}
	}
	if doc.HMACKey != "" {
		key, err := base64.StdEncoding.DecodeString(doc.HMACKey)
		if err != nil {
			return nil, fmt.Errorf("engine: %w: hmacKey not valid base64: %v", ErrPolicyInvalid, err)
		}
		policy.HMACKey = key
	}
	return policy, nil
}

// ParseManifestDocument validates and decodes a manifest document.
func ParseManifestDocument(raw []byte) (*ManifestDocument, error) {
	if errManifestSchema != nil {
		return nil, fmt.Errorf("engine: manifest schema unavailable: %w", errManifestSchema)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("engine: %w: %v", ErrPolicyInvalid, err)
	}
	if err := manifestSchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("engine: %w: %v", ErrPolicyInvalid, err)
	}
	var doc ManifestDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("engine: %w: %v", ErrPolicyInvalid, err)
	}
	return &doc, nil
}

// ParseDictionaryDocument validates and decodes a dictionary document into
// Detector values. Entries whose pattern looks like a bare literal (no
// regex metacharacters) become KindLiteral detectors; others become
// KindRegex. Compile() is responsible for dropping ones with invalid regex
// syntax.
func ParseDictionaryDocument(raw []byte) ([]Detector, error) {
	if errDictionarySchema != nil {
		return nil, fmt.Errorf("engine: dictionary schema unavailable: %w", errDictionarySchema)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("engine: %w: %v", ErrPolicyInvalid, err)
	}
	if err := dictionarySchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("engine: %w: %v", ErrPolicyInvalid, err)
	}
	var doc DictionaryDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("engine: %w: %v", ErrPolicyInvalid, err)
	}

	detectors := make([]Detector, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		d := Detector{
			ID:            e.Type,
			Category:      CategoryCustom,
			Risk:          Risk(e.Risk),
			DefaultAction: ActionMask,
		}
		if isBareLiteral(e.Pattern) {
			d.Kind = KindLiteral
			d.Literals = []string{e.Pattern}
		} else {
			d.Kind = KindRegex
			d.PatternSource = e.Pattern
		}
		detectors = append(detectors, d)
	}
	return detectors, nil
}

func isBareLiteral(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '|', '^', '$', '\\':
			return false
		}
	}
	return true
}
