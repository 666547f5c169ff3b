package scraper

// Helpers for the loosely typed values page.Evaluate hands back.
// Playwright returns JS objects as map[string]interface{} and arrays as
// []interface{}; the adapters decode those into typed structs here.

// AsString returns the value under key when it is a string.
func AsString(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// AsBool returns the value under key when it is a bool.
func AsBool(m map[string]interface{}, key string) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return false
}

// AsStrings returns the value under key as a string slice, dropping
// non-string elements.
func AsStrings(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// EvalObject asserts an Evaluate result to a JS object.
func EvalObject(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

// EvalObjects asserts an Evaluate result to an array of JS objects.
func EvalObjects(v interface{}) []map[string]interface{} {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}
