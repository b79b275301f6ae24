package literal

// ToJSON converts a parsed literal into a value encoding/json can marshal:
// tuples and sets become arrays (sets sorted), and dict keys that are not
// strings are rendered in literal syntax.
func ToJSON(v any) any {
	switch x := v.(type) {
	case Tuple:
		return toJSONItems(x)
	case []any:
		return toJSONItems(x)
	case Set:
		members := make([]any, 0, len(x))
		for m := range x {
			members = append(members, m)
		}
		return toJSONItems(sortByFormat(members))
	case Dict:
		out := make(map[string]any, len(x))
		for k, val := range x {
			key, ok := k.(string)
			if !ok {
				key = Format(k)
			}
			out[key] = ToJSON(val)
		}
		return out
	default:
		return v
	}
}

func toJSONItems(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = ToJSON(item)
	}
	return out
}
