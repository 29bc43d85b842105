// Package metadata extracts typed values out of a check's captured output
// using regex patterns, grounded on original_source/src/metadata.rs.
package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/verify/internal/core/ports"
)

var _ ports.MetadataExtractor = (*Extractor)(nil)

// Extractor implements ports.MetadataExtractor.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract applies every pattern in patterns to output. When a pattern's
// regex matches more than once, the LAST match wins (original_source
// resolves an ambiguity spec.md leaves open, confirmed by its own
// test_multiple_matches_uses_last).
func (e *Extractor) Extract(output string, patterns map[string]domain.MetadataPattern) map[string]any {
	if len(patterns) == 0 {
		return nil
	}

	result := make(map[string]any, len(patterns))
	for field, pattern := range patterns {
		re, err := regexp.Compile(pattern.Regex)
		if err != nil {
			continue
		}

		matches := re.FindAllStringSubmatchIndex(output, -1)
		if len(matches) == 0 {
			continue
		}
		last := matches[len(matches)-1]

		var raw string
		if pattern.HasReplace {
			raw = string(re.ExpandString(nil, pattern.Replacement, output, last))
		} else if len(last) >= 4 {
			raw = output[last[2]:last[3]]
		} else {
			raw = output[last[0]:last[1]]
		}

		result[field] = parseValue(raw)
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// parseValue opportunistically types a raw extracted string as an int64,
// then a float64, falling back to the string itself.
func parseValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return raw
}
