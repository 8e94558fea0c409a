package value

import (
	"fmt"
	"strings"
)

// Kind is the semantic type of an attribute value, independent of how the
// store represents it.
type Kind int

const (
	KindInvalid Kind = iota
	KindInteger
	KindDecimal
	KindText
	KindBoolean
	KindTimestamp
	KindUUID
)

var kindNames = map[Kind]string{
	KindInvalid:   "invalid",
	KindInteger:   "integer",
	KindDecimal:   "decimal",
	KindText:      "text",
	KindBoolean:   "boolean",
	KindTimestamp: "timestamp",
	KindUUID:      "uuid",
}

// kindAliases maps the names accepted in schema sources to a Kind.
var kindAliases = map[string]Kind{
	"integer":   KindInteger,
	"int":       KindInteger,
	"long":      KindInteger,
	"bigint":    KindInteger,
	"decimal":   KindDecimal,
	"float":     KindDecimal,
	"double":    KindDecimal,
	"numeric":   KindDecimal,
	"text":      KindText,
	"string":    KindText,
	"varchar":   KindText,
	"boolean":   KindBoolean,
	"bool":      KindBoolean,
	"timestamp": KindTimestamp,
	"datetime":  KindTimestamp,
	"time":      KindTimestamp,
	"uuid":      KindUUID,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Ordered reports whether values of this kind support range comparisons.
func (k Kind) Ordered() bool {
	switch k {
	case KindInteger, KindDecimal, KindText, KindTimestamp:
		return true
	default:
		return false
	}
}

// ParseKind resolves a kind name as written in a schema source.
// Matching is case-insensitive.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("unknown semantic type %q", name)
}
