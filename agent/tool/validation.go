package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
)

type ValidationError struct {
	Tool     string
	Field    string
	Message  string
	Expected string
	Received string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets callers match any argument problem with contract.ErrValidation.
func (e *ValidationError) Unwrap() error {
	return contractx.ErrValidation
}

// ValidateArgs checks args against def: required arguments are present and
// non-null, and every known argument has the declared type. Unknown arguments
// are ignored. Required strings must not be blank.
func ValidateArgs(def Definition, args map[string]any) error {
	for _, p := range def.Params {
		val, ok := args[p.Name]
		if !ok || val == nil {
			if p.Required {
				return &ValidationError{
					Tool:     def.Name,
					Field:    p.Name,
					Message:  fmt.Sprintf("%s: missing required argument %q", def.Name, p.Name),
					Expected: string(p.Type),
					Received: "<missing>",
				}
			}
			continue
		}

		switch p.Type {
		case ParamString:
			s, ok := val.(string)
			if !ok {
				return typeError(def.Name, p, val)
			}
			if p.Required && strings.TrimSpace(s) == "" {
				return &ValidationError{
					Tool:     def.Name,
					Field:    p.Name,
					Message:  fmt.Sprintf("%s: argument %q must not be empty", def.Name, p.Name),
					Expected: "non-empty string",
					Received: `""`,
				}
			}
		case ParamInteger:
			if _, ok := intValue(val); !ok {
				return typeError(def.Name, p, val)
			}
		}
	}
	return nil
}

// OutsideAdvertisedRange reports whether an integer argument falls outside the
// published minimum/maximum.
func OutsideAdvertisedRange(p Param, v int64) bool {
	return (p.Minimum != nil && v < *p.Minimum) || (p.Maximum != nil && v > *p.Maximum)
}

func typeError(tool string, p Param, val any) error {
	return &ValidationError{
		Tool:     tool,
		Field:    p.Name,
		Message:  fmt.Sprintf("%s: argument %q must be %s, got %T", tool, p.Name, p.Type, val),
		Expected: string(p.Type),
		Received: fmt.Sprintf("%T", val),
	}
}

// maxExactFloatInt is 2^53, the largest magnitude at which every integer is
// exactly representable as a float64.
const maxExactFloatInt = 1 << 53

func intValue(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Mod(v, 1) != 0 || math.Abs(v) > maxExactFloatInt {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return parsed, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return intValue(f)
	default:
		return 0, false
	}
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func intArg(args map[string]any, name string) (int64, bool) {
	val, ok := args[name]
	if !ok || val == nil {
		return 0, false
	}
	return intValue(val)
}
