package sparse

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

type Kind uint8

const (
	KindEmpty Kind = iota
	KindInt
	KindFloat
	KindBool
	KindText
	KindTimestamp
)

var kindNames = [...]string{"empty", "int", "float", "bool", "text", "timestamp"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func parseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindEmpty, false
}

// Value is a tagged matrix cell. The zero Value is Empty.
type Value struct {
	kind Kind
	i    int64 // Int, Bool (0/1)
	f    float64
	s    string
	t    time.Time
}

// Empty is the absent cell.
var Empty = Value{}

func Int(v int64) Value { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Text(v string) Value { return Value{kind: KindText, s: v} }

func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

// Timestamp stores t in UTC.
func Timestamp(t time.Time) Value {
	if t.IsZero() {
		return Value{kind: KindTimestamp}
	}
	return Value{kind: KindTimestamp, t: t.UTC()}
}

func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is zero-equivalent, ie. not worth storing.
// Bool(false) is a real value.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindInt:
		return v.i == 0
	case KindFloat:
		return v.f == 0
	case KindText:
		return v.s == ""
	case KindTimestamp:
		return v.t.IsZero()
	case KindBool:
		return false
	default:
		return true
	}
}

func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindEmpty, KindInt, KindFloat, KindBool:
		return true
	}
	return false
}

func (v Value) AsInt() int64 {
	switch v.kind {
	case KindInt, KindBool:
		return v.i
	case KindFloat:
		return int64(v.f)
	}
	return 0
}

func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindInt, KindBool:
		return float64(v.i)
	case KindFloat:
		return v.f
	}
	return 0
}

func (v Value) AsBool() bool {
	switch v.kind {
	case KindBool, KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	}
	return false
}

func (v Value) AsText() string {
	if v.kind == KindText {
		return v.s
	}
	return ""
}

func (v Value) AsTime() time.Time {
	if v.kind == KindTimestamp {
		return v.t
	}
	return time.Time{}
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.IsZero() && o.IsZero() {
		return true
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt, KindBool:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	case KindTimestamp:
		return v.t.Equal(o.t)
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.i != 0)
	case KindText:
		return v.s
	case KindTimestamp:
		if v.t.IsZero() {
			return ""
		}
		return v.t.Format(time.RFC3339Nano)
	}
	return "0"
}

// add sums two numeric cells; any Float operand promotes the result to Float.
func add(a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Empty, errors.Wrapf(ErrNonNumeric, "%s + %s", a.kind, b.kind)
	}
	if a.kind == KindFloat || b.kind == KindFloat {
		return Float(a.AsFloat() + b.AsFloat()), nil
	}
	return Int(a.AsInt() + b.AsInt()), nil
}

func mul(a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Empty, errors.Wrapf(ErrNonNumeric, "%s * %s", a.kind, b.kind)
	}
	if a.kind == KindFloat || b.kind == KindFloat {
		return Float(a.AsFloat() * b.AsFloat()), nil
	}
	return Int(a.AsInt() * b.AsInt()), nil
}

type jsonValue struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes v as {"kind": ..., "value": ...}; Empty encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch v.kind {
	case KindEmpty:
		return []byte("null"), nil
	case KindInt:
		payload = v.i
	case KindFloat:
		payload = v.f
	case KindBool:
		payload = v.i != 0
	case KindText:
		payload = v.s
	case KindTimestamp:
		payload = v.t
	default:
		return nil, errors.Errorf("sparse: cannot marshal %s", v.kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonValue{Kind: v.kind.String(), Value: raw})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Empty
		return nil
	}
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	kind, ok := parseKind(jv.Kind)
	if !ok {
		return errors.Errorf("sparse: unknown value kind %q", jv.Kind)
	}

	var err error
	switch kind {
	case KindEmpty:
		*v = Empty
	case KindInt:
		var i int64
		err = json.Unmarshal(jv.Value, &i)
		*v = Int(i)
	case KindFloat:
		var f float64
		err = json.Unmarshal(jv.Value, &f)
		*v = Float(f)
	case KindBool:
		var b bool
		err = json.Unmarshal(jv.Value, &b)
		*v = Bool(b)
	case KindText:
		var s string
		err = json.Unmarshal(jv.Value, &s)
		*v = Text(s)
	case KindTimestamp:
		var t time.Time
		err = json.Unmarshal(jv.Value, &t)
		*v = Timestamp(t)
	}
	return errors.Wrapf(err, "sparse: decoding %s value", kind)
}
