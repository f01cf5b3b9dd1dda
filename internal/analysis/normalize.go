package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var dueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizePriority coerces an untrusted priority value into low, medium, or
// high. Anything else, including nil, yields nil.
func NormalizePriority(value any) *Priority {
	if value == nil {
		return nil
	}
	s := stringify(value)
	// Only ASCII letters can lowercase to a known level; Unicode case mapping
	// would otherwise fold values like "HİGH" into "high".
	if !isASCII(s) {
		return nil
	}
	switch p := Priority(strings.ToLower(s)); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return &p
	default:
		return nil
	}
}

// NormalizeDueDate returns value unchanged when it looks like YYYY-MM-DD.
// Calendar validity is not checked, so 2024-13-40 is accepted.
func NormalizeDueDate(value any) *string {
	if value == nil {
		return nil
	}
	s := stringify(value)
	if s == "" || !dueDatePattern.MatchString(s) {
		return nil
	}
	return &s
}

// stringify renders decoded JSON values the way the webhook's producers
// (JavaScript) would when coercing them to strings.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case Priority:
		return string(v)
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case *Priority:
		if v == nil {
			return ""
		}
		return string(*v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatNumber(v)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = stringify(elem)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return fmt.Sprint(v)
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func formatNumber(v float64) string {
	if math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func nonBlankString(value any, fallback string) string {
	if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}
