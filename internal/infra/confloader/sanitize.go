package confloader

import "github.com/0823nobuo-png/System-Validator/internal/telemetry/logger"

// Sanitize returns a deep copy of m with sensitive values masked.
//
// Connection strings keep everything but the password. String values
// under sensitive-looking keys are replaced entirely. m is not modified.
func Sanitize(m Mapping) Mapping {
	if m == nil {
		return nil
	}
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = sanitizeValue(k, v)
	}
	return out
}

func sanitizeValue(key string, v Value) Value {
	switch v.Kind() {
	case KindString:
		s, _ := v.Str()
		if logger.IsSensitiveValue(s) {
			return String(logger.MaskDSN(s))
		}
		if s != "" && logger.IsSensitiveKey(key) {
			return String(logger.RedactedValue)
		}
		return v
	case KindMapping:
		m, _ := v.Map()
		return Map(Sanitize(m))
	case KindSequence:
		items, _ := v.Seq()
		out := make([]Value, len(items))
		for i, item := range items {
			out[i] = sanitizeValue(key, item)
		}
		return Seq(out...)
	default:
		return v
	}
}
