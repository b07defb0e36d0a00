package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Payload kinds. The extraction service tags its output with exactly one.
const (
	KindPartnership = "partnership"
	KindActivity    = "activity"
)

// FlexInt accepts a JSON number or a numeric string. Extraction output is
// not reliable about which one it emits.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*n = FlexInt(f)
	return nil
}

// FlexFloat is FlexInt's fractional counterpart (hours fields).
type FlexFloat float64

func (n *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*n = FlexFloat(f)
	return nil
}

// EventEntry is one event line of a partnership payload.
type EventEntry struct {
	EventDate  *string    `json:"event_date"`
	Site       *string    `json:"site"`
	Zip        *string    `json:"zip"`
	Hours      *FlexFloat `json:"hours"`
	Volunteers *FlexInt   `json:"volunteers"`
}

// ActivityItem is one activity line of an activity payload.
type ActivityItem struct {
	ActivityDate *string    `json:"activity_date"`
	Activity     *string    `json:"activity"`
	Organization *string    `json:"organization"`
	Location     *string    `json:"location"`
	Hours        *FlexFloat `json:"hours"`
	Description  *string    `json:"description"`
}

// Payload is the discriminated union the extraction service returns: a
// partnership agreement form or an individual activity log form, tagged by
// Kind. Absent fields arrive as explicit nulls.
type Payload struct {
	Kind string `json:"kind"`

	// partnership variant: preparer/contact identity plus event lines.
	FirstName      *string      `json:"first_name"`
	LastName       *string      `json:"last_name"`
	FamiliesServed *FlexInt     `json:"families_served"`
	Events         []EventEntry `json:"events"`

	// activity variant
	VolunteerName *string        `json:"volunteer_name"`
	Activities    []ActivityItem `json:"activities"`

	// shared contact fields
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Organization  *string `json:"organization"`
	PositionTitle *string `json:"position_title"`
}

// buildPayloadSchema returns the tagged-union JSON Schema (2020-12 subset)
// both variants must satisfy. It is sent to the extraction service inside
// the prompt and enforced locally on whatever comes back.
func buildPayloadSchema() map[string]any {
	partnership := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"kind":            map[string]any{"const": KindPartnership},
			"first_name":      nullableString(),
			"last_name":       nullableString(),
			"email":           nullableString(),
			"phone":           nullableString(),
			"organization":    nullableString(),
			"position_title":  nullableString(),
			"families_served": nullableCount(),
			"events": map[string]any{
				"type": []any{"array", "null"},
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"event_date": nullableDate(),
						"site":       nullableString(),
						"zip":        nullableString(),
						"hours":      nullableNumber(),
						"volunteers": nullableCount(),
					},
				},
			},
		},
		"required": []any{"kind"},
	}

	activity := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"kind":           map[string]any{"const": KindActivity},
			"volunteer_name": nullableString(),
			"email":          nullableString(),
			"phone":          nullableString(),
			"organization":   nullableString(),
			"position_title": nullableString(),
			"activities": map[string]any{
				"type": []any{"array", "null"},
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"activity_date": nullableDate(),
						"activity":      nullableString(),
						"organization":  nullableString(),
						"location":      nullableString(),
						"hours":         nullableNumber(),
						"description":   nullableString(),
					},
				},
			},
		},
		"required": []any{"kind"},
	}

	return map[string]any{
		"oneOf": []any{partnership, activity},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

func nullableDate() map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": "null"},
			map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		},
	}
}

// nullableCount allows an integer or an integer-looking string.
func nullableCount() map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": []any{"integer", "null"}},
			map[string]any{"type": "string", "pattern": `^[0-9]+$`},
		},
	}
}

// nullableNumber allows a number or a numeric string.
func nullableNumber() map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": []any{"number", "null"}},
			map[string]any{"type": "string", "pattern": `^[0-9]+(\.[0-9]+)?$`},
		},
	}
}

// compilePayloadSchema compiles the union schema once at construction time.
func compilePayloadSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(buildPayloadSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("payload.schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("payload.schema.json")
}

// parsePayload validates raw JSON against the union schema and decodes it.
// A document that is JSON but not one of the two shapes is rejected here,
// which callers translate to a no-data outcome rather than persisting
// partial garbage.
func parsePayload(schema *jsonschema.Schema, raw []byte) (*Payload, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("payload does not match either schema: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}

// firstJSONObject returns the first balanced {...} span in free text, or
// false when none exists. Strings and escapes are honored so braces inside
// quoted values do not unbalance the scan.
func firstJSONObject(text string) ([]byte, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(text[start : i+1]), true
			}
		}
	}
	return nil, false
}
