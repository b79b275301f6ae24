package literal

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Format renders v in literal syntax. Maps and sets are emitted in sorted
// order so the output is deterministic. Values without a literal form are
// rendered as the quoted text of fmt.Sprint.
func Format(v any) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case string:
		b.WriteString(Quote(x))
	case int:
		b.WriteString(strconv.Itoa(x))
	case float64:
		b.WriteString(formatFloat(x))
	case Tuple:
		b.WriteByte('(')
		writeItems(b, x)
		if len(x) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case Set:
		if len(x) == 0 {
			b.WriteString("set()")
			return
		}
		members := make([]any, 0, len(x))
		for m := range x {
			members = append(members, m)
		}
		b.WriteByte('{')
		writeItems(b, sortByFormat(members))
		b.WriteByte('}')
	case Dict:
		pairs := make([][2]string, 0, len(x))
		for k, val := range x {
			pairs = append(pairs, [2]string{Format(k), Format(val)})
		}
		writePairs(b, pairs)
	case []any:
		b.WriteByte('[')
		writeItems(b, x)
		b.WriteByte(']')
	case fmt.Stringer:
		b.WriteString(Quote(x.String()))
	case error:
		b.WriteString(Quote(x.Error()))
	default:
		writeReflect(b, reflect.ValueOf(v))
	}
}

func writeReflect(b *strings.Builder, rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			b.WriteString("None")
			return
		}
		writeValue(b, rv.Elem().Interface())
	case reflect.Bool:
		writeValue(b, rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		b.WriteString(formatFloat(rv.Float()))
	case reflect.String:
		b.WriteString(Quote(rv.String()))
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			b.WriteString("[]")
			return
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		b.WriteByte('[')
		writeItems(b, items)
		b.WriteByte(']')
	case reflect.Map:
		pairs := make([][2]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs = append(pairs, [2]string{Format(iter.Key().Interface()), Format(iter.Value().Interface())})
		}
		writePairs(b, pairs)
	default:
		b.WriteString(Quote(fmt.Sprint(rv.Interface())))
	}
}

func writeItems(b *strings.Builder, items []any) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(b, item)
	}
}

func writePairs(b *strings.Builder, pairs [][2]string) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	b.WriteByte('{')
	for i, kv := range pairs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(kv[0])
		b.WriteString(": ")
		b.WriteString(kv[1])
	}
	b.WriteByte('}')
}

func sortByFormat(items []any) []any {
	sort.Slice(items, func(i, j int) bool { return Format(items[i]) < Format(items[j]) })
	return items
}

// Quote renders s as a string literal. Single quotes are preferred unless s
// contains a single quote and no double quote.
func Quote(s string) string {
	quote := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		quote = '"'
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quote)
	for i, w := 0, 0; i < len(s); i += w {
		r, width := utf8.DecodeRuneInString(s[i:])
		w = width
		switch {
		case r == utf8.RuneError && width == 1:
			fmt.Fprintf(&b, `\x%02x`, s[i])
		case r == rune(quote) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// formatFloat uses the shortest round-tripping digits, switching to
// exponent form below 1e-4 and at or above 1e16.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	e := strconv.FormatFloat(f, 'e', -1, 64)
	if i := strings.LastIndexByte(e, 'e'); i >= 0 {
		if exp, err := strconv.Atoi(e[i+1:]); err == nil && (exp < -4 || exp >= 16) {
			return e
		}
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
