package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const parameterSeparator = "/"

// Decimal exponents rendered in fixed notation: [minFixedExponent, maxFixedExponent).
const (
	minFixedExponent = -4
	maxFixedExponent = 16
)

// Param is a single metric parameter. Value is typically an int, float64, string or bool.
type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered parameter combination. Order is significant:
// it fixes the rendering of the persisted parameter identifier.
type Params []Param

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}

	return nil, false
}

// Float returns the numeric value stored under key.
func (p Params) Float(key string) (float64, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}

	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Merge returns a copy of p updated with other. Keys already present keep
// their position and take the new value; new keys are appended in order.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p), len(p)+len(other))
	copy(out, p)

	for _, param := range other {
		replaced := false

		for i := range out {
			if out[i].Key == param.Key {
				out[i].Value = param.Value
				replaced = true

				break
			}
		}

		if !replaced {
			out = append(out, param)
		}
	}

	return out
}

// String renders the parameters as "<value>_<key>" segments joined by "/",
// for example "0.75_beta/5.0_pct".
func (p Params) String() string {
	segments := make([]string, 0, len(p))
	for _, param := range p {
		segments = append(segments, formatParamValue(param.Value)+"_"+param.Key)
	}

	return strings.Join(segments, parameterSeparator)
}

// formatParamValue keeps a trailing ".0" on integral floats and renders ints
// bare, so "5.0_pct" and "5_pct" stay distinct identifiers.
func formatParamValue(v any) string {
	switch n := v.(type) {
	case float64:
		return formatFloat(n)
	case float32:
		return formatFloat(float64(n))
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		if n {
			return "True"
		}

		return "False"
	case string:
		return n
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat renders the shortest round-trip digits, switching to exponent
// form below 1e-4 and from 1e16 upwards ("1e-05", "1.5e+16").
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if f != 0 {
		sci := strconv.FormatFloat(f, 'e', -1, 64)
		if exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:]); err == nil && (exp < minFixedExponent || exp >= maxFixedExponent) {
			return sci
		}
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
