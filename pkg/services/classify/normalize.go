package classify

import (
	"fmt"
	"strings"
)

// normalizeKey converts the export tool's hyphen-separated field spelling
// to the canonical camel-case attribute spelling ("vcn-id" -> "vcnId").
// Keys without hyphens pass through unchanged.
func normalizeKey(key string) string {
	parts := strings.Split(key, "-")
	if len(parts) == 1 {
		return key
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// normalizeValue rewrites keys recursively through nested objects and
// arrays of objects.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[normalizeKey(k)] = normalizeValue(v)
	}
	return out
}

// flattenDefinedTags turns the source's two-level {namespace: {key: value}}
// defined-tag shape into a flat "namespace.key" mapping. A flat input map
// is accepted as-is.
func flattenDefinedTags(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := map[string]string{}
	for ns, nested := range m {
		if inner, ok := nested.(map[string]any); ok {
			for k, val := range inner {
				out[ns+"."+k] = fmt.Sprintf("%v", val)
			}
			continue
		}
		out[ns] = fmt.Sprintf("%v", nested)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringTags(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprintf("%v", val)
	}
	return out
}
