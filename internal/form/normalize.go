package form

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// State is the raw form for one design category. Values are strings exactly
// as typed (either decimal separator) or booleans for toggle fields.
type State map[string]any

// Payload is a normalized form: every value is a float64, a bool or nil.
type Payload map[string]any

// Set stores a raw value.
func (s State) Set(key string, raw any) {
	s[key] = raw
}

// Clone returns a shallow copy; values are immutable scalars.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Normalize converts every field of the state with NormalizeValue.
// It never fails: anything that does not read as a finite number becomes nil.
func Normalize(s State) Payload {
	out := make(Payload, len(s))
	for k, v := range s {
		out[k] = NormalizeValue(v)
	}
	return out
}

// NormalizeValue applies the per-field rule:
//  1. booleans pass through
//  2. nil and "" become nil
//  3. numbers pass through as float64 (non-finite become nil)
//  4. text has commas replaced by periods, is trimmed and parsed
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case bool:
		return x
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return parseDecimal(x)
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case json.Number:
		return parseDecimal(x.String())
	}
	return nil
}

func parseDecimal(s string) any {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || !plainDecimal(s) {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

// plainDecimal rejects the Go literal forms ParseFloat accepts beyond
// ordinary decimal text: hex mantissas and digit separators.
func plainDecimal(s string) bool {
	if strings.Contains(s, "_") {
		return false
	}
	u := strings.TrimLeft(s, "+-")
	return !strings.HasPrefix(u, "0x") && !strings.HasPrefix(u, "0X")
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// Number returns the field as a float64 when it is present and numeric.
func (p Payload) Number(key string) (float64, bool) {
	f, ok := p[key].(float64)
	return f, ok
}

// NumberOr returns the field or def when the field is missing or null.
func (p Payload) NumberOr(key string, def float64) float64 {
	if f, ok := p.Number(key); ok {
		return f
	}
	return def
}

// Flag reads a boolean field; anything else is false.
func (p Payload) Flag(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Clone returns a shallow copy of the payload.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p)+4)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// DesignPayload builds the body of a design submission: the normalized form
// plus write_reports for the categories whose endpoint accepts it.
func DesignPayload(c Category, s State) Payload {
	p := Normalize(s)
	if c.WritesReports() {
		p["write_reports"] = true
	}
	return p
}
