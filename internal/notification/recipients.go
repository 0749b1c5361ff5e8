package notification

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnparseable means none of the known recipient encodings matched.
// Callers treat it as an empty recipient set, never as a hard failure.
var ErrUnparseable = errors.New("unparseable recipients")

// ParseRecipients decodes the recipients column. Historical rows exist in
// three shapes, tried in fixed order:
//
//  1. JSON array: ["u1","u2"]
//  2. set literal: {u1, u2} or {'u1', 'u2'}
//  3. bare id: u1
func ParseRecipients(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return clean(out), nil
		}
		// fall through: a malformed array may still parse as a set literal
	}

	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		inner := strings.TrimSpace(raw[1 : len(raw)-1])
		if inner == "" {
			return nil, nil
		}
		parts := strings.Split(inner, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			p = strings.Trim(p, `'"`)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	}

	if strings.ContainsAny(raw, "[]{}") {
		return nil, ErrUnparseable
	}
	return []string{raw}, nil
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EncodeRecipients writes the canonical shape (JSON array). New rows always
// use this; the parser keeps the legacy shapes readable.
func EncodeRecipients(ids []string) string {
	if len(ids) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(ids)
	return string(b)
}
