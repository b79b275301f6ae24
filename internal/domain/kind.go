package domain

// ResultKind enumerates the return types a stub can declare.
type ResultKind int

const (
	// KindUnknown is an unannotated return; it decodes as text.
	KindUnknown ResultKind = iota
	KindBoolean
	KindInteger
	KindReal
	KindText
	KindSequence
	KindSet
	KindMapping
	KindTuple
)

var kindNames = [...]string{
	KindUnknown:  "unknown",
	KindBoolean:  "bool",
	KindInteger:  "int",
	KindReal:     "float",
	KindText:     "str",
	KindSequence: "list",
	KindSet:      "set",
	KindMapping:  "dict",
	KindTuple:    "tuple",
}

// String returns the literal-syntax type name of the kind.
func (k ResultKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsContainer reports whether values of this kind are always parsed as literals.
func (k ResultKind) IsContainer() bool {
	switch k {
	case KindSequence, KindSet, KindMapping, KindTuple:
		return true
	}
	return false
}

// ParseResultKind maps a type name such as "list[str]" or "bool" to its kind.
// Parameterized names resolve by their outer name.
func ParseResultKind(name string) (ResultKind, bool) {
	base := name
	for i, r := range name {
		if r == '[' {
			base = name[:i]
			break
		}
	}
	switch base {
	case "", "unknown":
		return KindUnknown, true
	case "bool":
		return KindBoolean, true
	case "int":
		return KindInteger, true
	case "float":
		return KindReal, true
	case "str":
		return KindText, true
	case "list":
		return KindSequence, true
	case "set":
		return KindSet, true
	case "dict":
		return KindMapping, true
	case "tuple":
		return KindTuple, true
	}
	return KindUnknown, false
}
