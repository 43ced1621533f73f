package formset

// Strings converts decoded change values into []string. It accepts
// []string, []any holding strings, a single string (wrapped) and nil.
func Strings(value any) ([]string, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case []string:
		return append([]string(nil), typed...), true
	case string:
		if typed == "" {
			return nil, true
		}
		return []string{typed}, true
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// CloneStrings copies a []string, keeping nil as nil. Use it with WithClone.
func CloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}
