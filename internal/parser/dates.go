package parser

import (
	"regexp"
	"time"
)

// Time format patterns (ordered by specificity - most specific first)
var (
	rfc3339NanoRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}(Z|[+-]\d{2}:\d{2})$`)             // 2006-01-02T15:04:05.999999999Z
	rfc3339Regex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)            // 2006-01-02T15:04:05Z
	iso8601Regex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{2}:\d{2}|Z|[+-]\d{4})?$`) // ISO8601 variants
	dateOnlyRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                                         // 2006-01-02
	dateTimeRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)                               // 2006-01-02 15:04:05
)

type datePattern struct {
	regex   *regexp.Regexp
	layouts []string
}

var datePatterns = []datePattern{
	{rfc3339NanoRegex, []string{time.RFC3339Nano}},
	{rfc3339Regex, []string{time.RFC3339Nano}},
	{iso8601Regex, []string{"2006-01-02T15:04:05.999999999-0700", "2006-01-02T15:04:05.999999999"}},
	{dateOnlyRegex, []string{time.DateOnly}},
	{dateTimeRegex, []string{"2006-01-02 15:04:05.999999999"}},
}

// detectDate reports whether s looks like a timestamp and parses it. Zone-less timestamps are
// read as UTC.
func detectDate(s string) (time.Time, bool) {
	for _, p := range datePatterns {
		if !p.regex.MatchString(s) {
			continue
		}
		for _, layout := range p.layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	return time.Time{}, false
}
