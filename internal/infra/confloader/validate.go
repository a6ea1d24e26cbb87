package confloader

import "strings"

// Validate checks that m carries a PostgreSQL connection string under
// DSNKey. It returns nil or a *ValidationError.
func Validate(m Mapping) error {
	v, ok := m[DSNKey]
	if !ok {
		return &ValidationError{Key: DSNKey, Reason: ReasonMissing}
	}
	dsn, ok := v.Str()
	if !ok {
		return &ValidationError{Key: DSNKey, Reason: ReasonNotString}
	}
	if !strings.HasPrefix(dsn, DSNPrefix) {
		return &ValidationError{Key: DSNKey, Reason: ReasonPrefix}
	}
	return nil
}
