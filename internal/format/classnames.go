package format

import (
	"sort"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// ClassNames joins conditional class fragments and lets tailwind-merge drop
// earlier classes that a later class of the same variant and property
// replaces. Accepted inputs are string, []string, map[string]bool and nested
// []any; anything else is ignored.
func ClassNames(inputs ...any) string {
	var classes []string
	for _, input := range inputs {
		classes = collectClasses(classes, input)
	}
	if len(classes) == 0 {
		return ""
	}

	return twmerge.Merge(strings.Join(classes, " "))
}

func collectClasses(classes []string, input any) []string {
	switch v := input.(type) {
	case string:
		classes = append(classes, strings.Fields(v)...)
	case []string:
		for _, s := range v {
			classes = append(classes, strings.Fields(s)...)
		}
	case []any:
		for _, nested := range v {
			classes = collectClasses(classes, nested)
		}
	case map[string]bool:
		keys := make([]string, 0, len(v))
		for k, on := range v {
			if on {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			classes = append(classes, strings.Fields(k)...)
		}
	}
	return classes
}
