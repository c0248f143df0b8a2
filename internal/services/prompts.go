package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Prompt template for root-cause explanation generation.
const (
	promptPreamble = "The system encountered a failure. Below are the key log events preceding the anomaly:\n\n"

	promptClosing = "\nBased on the above log events, identify the most likely root cause of the issue.\n" +
		"Explain the cause in one or two sentences, using technical reasoning if possible.\n"

	// ReasoningSeparator joins the rendered prompt and the model continuation
	// in the "full" explanation mode.
	ReasoningSeparator = "\nAI Reasoning: "
)

// BuildRootCausePrompt renders an ordered list of event objects into the
// prompt fed to the generative model. Output is byte-identical for identical
// input: event keys are sorted and no timestamps or randomness enter here.
// An empty event list still yields the preamble and closing instruction.
func BuildRootCausePrompt(events []map[string]any) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	for i, event := range events {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, encodeEvent(event)))
	}
	b.WriteString(promptClosing)
	return b.String()
}

// encodeEvent serializes one event as a single-line JSON object with
// ", " and ": " separators and literal non-ASCII characters, matching the
// format the upstream pipeline uses for its own prompt records.
func encodeEvent(event map[string]any) string {
	var b strings.Builder
	writeJSONValue(&b, event)
	return b.String()
}

func writeJSONValue(b *strings.Builder, v any) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(encodeScalar(k))
			b.WriteString(": ")
			writeJSONValue(b, t[k])
		}
		b.WriteString("}")
	case []any:
		b.WriteString("[")
		for i, item := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			writeJSONValue(b, item)
		}
		b.WriteString("]")
	default:
		b.WriteString(encodeScalar(v))
	}
}

// encodeScalar marshals a scalar with HTML escaping disabled so non-ASCII
// and characters like < and & stay literal.
func encodeScalar(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "null"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
