package extract

import (
	"encoding/json"
	"strings"
)

// buildSystemPrompt describes the exactly-two acceptable output shapes. The
// same schema that is enforced locally is embedded so the model and the
// validator cannot drift apart.
func buildSystemPrompt() string {
	parts := []string{
		"You are a data-entry assistant reading a scanned or photographed volunteer form.",
		"The document is one of exactly two form types:",
		`1. A partnership agreement form. Output {"kind": "partnership"} plus the preparer's contact identity (first_name, last_name, email, phone, organization, position_title), families_served as a count, and "events": a list of {event_date, site, zip, hours, volunteers}.`,
		`2. An individual volunteer activity log. Output {"kind": "activity"} plus volunteer_name, contact fields (email, phone, organization, position_title), and "activities": a list of {activity_date, activity, organization, location, hours, description}.`,
		"Use ISO-8601 dates (YYYY-MM-DD).",
		"If a field is not legible or not present on the form, set it to null explicitly; never omit a key and never invent values.",
		"Return ONLY a single JSON object matching the JSON Schema below, with no commentary.",
		"JSON Schema:",
		mustJSON(buildPayloadSchema()),
	}
	return strings.Join(parts, "\n")
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
