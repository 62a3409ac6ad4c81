package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

func isKeyChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || isKeySeparator(c)
}

func isKeySeparator(c byte) bool {
	return c == '-' || c == '_' || c == '.'
}

// NormalizeKey lower-cases a snapshot or drill key, replaces characters
// outside [a-z0-9._-] with '-', collapses runs of separators and trims
// separators from both ends. The result is at most MaxKeyLength bytes.
func NormalizeKey(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))

	var b strings.Builder
	b.Grow(len(s))
	var last byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isKeyChar(c) {
			c = '-'
		}
		// Drop separators at the start and directly after another separator.
		if isKeySeparator(c) && (b.Len() == 0 || isKeySeparator(last)) {
			continue
		}
		b.WriteByte(c)
		last = c
	}

	out := strings.TrimRight(b.String(), "-_.")
	if len(out) > MaxKeyLength {
		out = strings.TrimRight(out[:MaxKeyLength], "-_.")
	}
	return out
}

// SanitizeEnum returns the allowed member matching candidate
// case-insensitively, or fallback when the candidate is empty or unknown.
func SanitizeEnum(candidate string, allowed []string, fallback string) string {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if c == "" {
		return fallback
	}
	for _, v := range allowed {
		if v == c {
			return v
		}
	}
	return fallback
}

// IsEnumMember reports whether value is exactly one of allowed.
func IsEnumMember(value string, allowed []string) bool {
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}

func SanitizeBackupType(v, fallback string) string {
	return SanitizeEnum(v, BackupTypes, fallback)
}

func SanitizeSnapshotStatus(v, fallback string) string {
	return SanitizeEnum(v, SnapshotStatuses, fallback)
}

func SanitizeVerificationStatus(v, fallback string) string {
	return SanitizeEnum(v, VerificationStatuses, fallback)
}

func SanitizeDrillStatus(v, fallback string) string {
	return SanitizeEnum(v, DrillStatuses, fallback)
}

func SanitizeScenario(v, fallback string) string {
	return SanitizeEnum(v, DrillScenarios, fallback)
}

// CoerceFloat parses numeric-like input: Go numbers, json.Number and numeric
// strings. Non-finite or unparsable values report false.
func CoerceFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		return CoerceFloat(string(n))
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceInt is CoerceFloat truncated toward zero. Values outside the int64
// range report false.
func CoerceInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	}
	f, ok := CoerceFloat(v)
	if !ok {
		return 0, false
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, false
	}
	return int64(t), true
}

// PositiveIntOr coerces v to a positive integer or returns fallback.
func PositiveIntOr(v any, fallback int) int {
	n, ok := CoerceInt(v)
	if !ok || n <= 0 || n > math.MaxInt32 {
		return fallback
	}
	return int(n)
}

// trimmedPtr trims a string pointer and collapses blank values to nil.
func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
