package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var templateVariable = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExtractVariables lists the {{name}} markers across texts in order of
// first appearance.
func ExtractVariables(texts ...string) []string {
	var names []string
	for _, text := range texts {
		for _, m := range templateVariable.FindAllStringSubmatch(text, -1) {
			names = append(names, m[1])
		}
	}
	return lo.Uniq(names)
}

// contextMarker matches {{key}} first and falls back to {key}.
var contextMarker = regexp.MustCompile(`\{\{(\w+)\}\}|\{(\w+)\}`)

// RenderTemplate substitutes {{key}} and {key} with the stringified context
// value in one pass over text, so substituted values are never rescanned.
// Unknown markers are left in place.
func RenderTemplate(text string, context map[string]interface{}) string {
	return contextMarker.ReplaceAllStringFunc(text, func(marker string) string {
		key := strings.Trim(marker, "{}")
		value, ok := context[key]
		if !ok {
			return marker
		}
		return stringify(value)
	})
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
