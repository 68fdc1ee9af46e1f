package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenRe = regexp.MustCompile("{(.*?)}")

// ResolveInputParams copies params replacing every {$.path} token found in
// string values with the value the jsonpath selects in data. A string made of
// a single token takes the selected value as is.
func ResolveInputParams(data map[string]any, params map[string]any) map[string]any {
	output := make(map[string]any, len(params))
	resolveParams(data, params, output)
	return output
}

func resolveParams(data map[string]any, params map[string]any, output map[string]any) {
	for k, v := range params {
		output[k] = resolveValue(data, v)
	}
}

func resolveValue(data map[string]any, v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		resolveParams(data, val, out)
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, resolveValue(data, item))
		}
		return out
	case string:
		return resolveString(data, val)
	default:
		return v
	}
}

func resolveString(data map[string]any, s string) any {
	tokens := tokenRe.FindAllString(s, -1)
	if len(tokens) == 1 && tokens[0] == s {
		if path := tokenPath(s); strings.HasPrefix(path, "$") {
			value, _ := jsonpath.JsonPathLookup(data, path)
			return value
		}
	}
	for _, token := range tokens {
		path := tokenPath(token)
		if !strings.HasPrefix(path, "$") {
			continue
		}
		value, _ := jsonpath.JsonPathLookup(data, path)
		s = strings.ReplaceAll(s, token, fmt.Sprintf("%v", value))
	}
	return s
}

func tokenPath(token string) string {
	return strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
}
