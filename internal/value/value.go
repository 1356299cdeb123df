// Package value defines the cell type of interpreter output rows.
package value

import "fmt"

// Tag identifies which variant a Value holds.
type Tag int

const (
	TagNull Tag = iota
	TagFloat
	TagInt
	TagStr
	TagStrList
)

// Value is a tagged variant: exactly one of the typed accessors is valid
// for a given Tag.
type Value struct {
	tag     Tag
	f       float64
	i       int64
	s       string
	strList []string
}

func Null() Value { return Value{tag: TagNull} }

func Float(f float64) Value { return Value{tag: TagFloat, f: f} }

func Int(i int64) Value { return Value{tag: TagInt, i: i} }

func Str(s string) Value { return Value{tag: TagStr, s: s} }

// StrList copies items so the caller's slice may be mutated afterward.
func StrList(items []string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{tag: TagStrList, strList: cp}
}

func (v Value) Tag() Tag { return v.tag }

func (v Value) IsNull() bool { return v.tag == TagNull }

func (v Value) Float() (float64, bool) {
	if v.tag != TagFloat {
		return 0, false
	}
	return v.f, true
}

func (v Value) Int() (int64, bool) {
	if v.tag != TagInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) Str() (string, bool) {
	if v.tag != TagStr {
		return "", false
	}
	return v.s, true
}

func (v Value) StrList() ([]string, bool) {
	if v.tag != TagStrList {
		return nil, false
	}
	return v.strList, true
}

// AppendStrList returns a copy of v with item appended, failing if v is not
// a StrList (or Null, in which case a fresh one-element list is created).
func (v Value) AppendStrList(item string) (Value, bool) {
	switch v.tag {
	case TagNull:
		return StrList([]string{item}), true
	case TagStrList:
		next := make([]string, len(v.strList)+1)
		copy(next, v.strList)
		next[len(v.strList)] = item
		return Value{tag: TagStrList, strList: next}, true
	default:
		return Value{}, false
	}
}

// String renders the value the way a row preview / debug dump would.
func (v Value) String() string {
	switch v.tag {
	case TagNull:
		return ""
	case TagFloat:
		return fmt.Sprintf("%g", v.f)
	case TagInt:
		return fmt.Sprintf("%d", v.i)
	case TagStr:
		return v.s
	case TagStrList:
		return fmt.Sprintf("%v", v.strList)
	default:
		return ""
	}
}
