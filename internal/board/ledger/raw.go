package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RawObject is a loosely-typed on-chain object as returned by the node.
// Content is the unparsed field tree; only the normalizer may walk it.
type RawObject struct {
	ObjectID string
	Version  uint64
	Content  map[string]interface{}
}

// RawEvent is a loosely-typed contract event. TimestampMs is 0 when the
// node omitted the timestamp.
type RawEvent struct {
	TxDigest    string
	EventSeq    string
	Type        string
	TimestampMs int64
	Parsed      map[string]interface{}
}

// ArgKind discriminates call arguments.
type ArgKind int

const (
	ArgObject ArgKind = iota
	ArgU64
	ArgU8
	ArgBool
	ArgString
)

// Arg is one typed argument of a contract call.
type Arg struct {
	Kind   ArgKind
	Object string
	U64    uint64
	U8     uint8
	Bool   bool
	Str    string
}

func ObjectArg(id string) Arg { return Arg{Kind: ArgObject, Object: id} }
func U64Arg(v uint64) Arg     { return Arg{Kind: ArgU64, U64: v} }
func U8Arg(v uint8) Arg       { return Arg{Kind: ArgU8, U8: v} }
func BoolArg(v bool) Arg      { return Arg{Kind: ArgBool, Bool: v} }
func StringArg(v string) Arg  { return Arg{Kind: ArgString, Str: v} }

// MarshalJSON encodes the argument in the wallet bridge wire form,
// one key per kind. u64 travels as a decimal string to dodge JS precision.
func (a Arg) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ArgObject:
		return json.Marshal(map[string]interface{}{"object": a.Object})
	case ArgU64:
		return json.Marshal(map[string]interface{}{"u64": strconv.FormatUint(a.U64, 10)})
	case ArgU8:
		return json.Marshal(map[string]interface{}{"u8": a.U8})
	case ArgBool:
		return json.Marshal(map[string]interface{}{"bool": a.Bool})
	case ArgString:
		return json.Marshal(map[string]interface{}{"string": a.Str})
	}
	return nil, fmt.Errorf("unknown arg kind %d", a.Kind)
}

// CallSpec is a fully materialized contract call, ready for the signer.
type CallSpec struct {
	Target  string `json:"target"` // "<package>::<module>::<function>"
	Args    []Arg  `json:"args"`
	ChainID string `json:"chain_id"`
}
