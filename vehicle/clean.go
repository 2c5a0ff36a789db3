package vehicle

import (
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches the first numeric token in a noisy spec string,
// including thousands separators and a decimal part, e.g. "1,234.5 kg",
// "6.1s", "450 L".
var numberPattern = regexp.MustCompile(`-?\d+(?:[.,]\d+)*`)

// CleanNumber extracts the first numeric token from a noisy spec string and
// returns it as a float. Returns nil when no number is present ("N/A",
// "null", "", prose). Never returns an error: a value that cannot be cleaned
// is simply absent.
func CleanNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "n/a", "na", "null", "none", "-", "--", "unknown":
		return nil
	}

	token := numberPattern.FindString(s)
	if token == "" {
		return nil
	}

	normalized := normalizeSeparators(token)
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return nil
	}
	return &f
}

// normalizeSeparators resolves locale separators in a numeric token. A token
// with both '.' and ',' treats the last one as the decimal mark; a lone ','
// followed by exactly three digits is a thousands separator, otherwise it is
// a decimal comma.
func normalizeSeparators(token string) string {
	lastDot := strings.LastIndexByte(token, '.')
	lastComma := strings.LastIndexByte(token, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,5 -> 1234.5
			token = strings.ReplaceAll(token, ".", "")
			token = strings.Replace(token, ",", ".", 1)
		} else {
			// 1,234.5 -> 1234.5
			token = strings.ReplaceAll(token, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(token, ",") == 1 && len(token)-lastComma-1 != 3 {
			// 6,1 -> 6.1
			token = strings.Replace(token, ",", ".", 1)
		} else {
			// 12,500 or 1,234,567 -> thousands separators
			token = strings.ReplaceAll(token, ",", "")
		}
	case strings.Count(token, ".") > 1:
		// 1.234.567 -> European thousands separators
		token = strings.ReplaceAll(token, ".", "")
	}
	return token
}

// BucketDrivetrain maps a free-form drivetrain string into the closed set
// {AWD, RWD, FWD}, defaulting to FWD.
func BucketDrivetrain(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "awd"), strings.Contains(s, "4wd"),
		strings.Contains(s, "4x4"), strings.Contains(s, "all"),
		strings.Contains(s, "quattro"), strings.Contains(s, "xdrive"),
		strings.Contains(s, "4matic"):
		return "AWD"
	case strings.Contains(s, "rwd"), strings.Contains(s, "rear"):
		return "RWD"
	default:
		return "FWD"
	}
}
