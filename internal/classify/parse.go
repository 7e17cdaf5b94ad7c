package classify

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	errNoJSONObject  = errors.New("no JSON object in response")
	flatObjectRegexp = regexp.MustCompile(`(?s)\{[^{}]*\}`)
)

// extractJSONObject pulls a JSON object out of model output. Markdown code
// fences are dropped; if the remainder is not an object, the first flat
// {...} span is tried.
func extractJSONObject(content string) (map[string]json.RawMessage, []byte, error) {
	text := stripCodeFences(strings.TrimSpace(content))

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj != nil {
		return obj, []byte(text), nil
	}

	if span := flatObjectRegexp.FindString(text); span != "" {
		if err := json.Unmarshal([]byte(span), &obj); err == nil && obj != nil {
			return obj, []byte(span), nil
		}
	}
	return nil, nil, errNoJSONObject
}

func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func hasKeys(obj map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return false
		}
	}
	return true
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func floatField(obj map[string]json.RawMessage, key string) (float64, bool) {
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	// Some models quote numbers.
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if f, err := json.Number(strings.TrimSpace(str)).Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

func boolField(obj map[string]json.RawMessage, key string) (bool, bool) {
	raw, ok := obj[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
