package channel

import (
	"context"
	"encoding/json"
	"math"

	"github.com/go-viper/mapstructure/v2"
)

// Args is the loosely typed argument map delivered by the transport.
type Args map[string]any

// Call is one invocation on a channel.
type Call struct {
	Method string
	Args   Args
}

// Kind is the expected type of an argument.
type Kind int

const (
	Bool Kind = iota
	String
	Int
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "boolean"
	case String:
		return "string"
	case Int:
		return "integer"
	default:
		return "unknown"
	}
}

// Param declares one argument of a method.
type Param struct {
	Name     string
	Kind     Kind
	Required bool
}

// Required declares a mandatory argument.
func Required(name string, kind Kind) Param {
	return Param{Name: name, Kind: kind, Required: true}
}

// Optional declares an argument that may be absent or null.
func Optional(name string, kind Kind) Param {
	return Param{Name: name, Kind: kind}
}

// Schema is the argument shape of a method.
type Schema []Param

// Validate checks args against the schema. Absent and null values are
// the same thing; a present value of the wrong type is rejected even for
// optional parameters.
func (s Schema) Validate(args Args) *CallError {
	for _, p := range s {
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Required {
				return Errorf(CodeInvalidArgument, "%s must be a %s", p.Name, p.Kind)
			}
			continue
		}
		if !matches(p.Kind, v) {
			return Errorf(CodeInvalidArgument, "%s must be a %s", p.Name, p.Kind)
		}
	}
	return nil
}

func matches(kind Kind, v any) bool {
	switch kind {
	case Bool:
		_, ok := v.(bool)
		return ok
	case String:
		_, ok := v.(string)
		return ok
	case Int:
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			return true
		case uint:
			return uint64(n) <= math.MaxInt64
		case uint64:
			return n <= math.MaxInt64
		case float64:
			return wholeInt64(n)
		case float32:
			return wholeInt64(float64(n))
		case json.Number:
			_, err := n.Int64()
			return err == nil
		}
	}
	return false
}

// wholeInt64 reports whether f is an integer representable as an int64.
func wholeInt64(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}

// Bind builds a method whose arguments are validated against schema and
// then decoded into P using `arg` struct tags.
func Bind[P any](name string, schema Schema, failure Code, fn func(ctx context.Context, params P) *Reply) Method {
	return Method{
		Name:    name,
		Schema:  schema,
		Failure: failure,
		Handle: func(ctx context.Context, args Args) *Reply {
			var params P
			if err := decodeArgs(args, &params); err != nil {
				return Fail(Errorf(CodeInvalidArgument, "%v", err))
			}
			return fn(ctx, params)
		},
	}
}

// NoArgs builds a method that takes no arguments.
func NoArgs(name string, failure Code, fn func(ctx context.Context) *Reply) Method {
	return Method{
		Name:    name,
		Failure: failure,
		Handle: func(ctx context.Context, _ Args) *Reply {
			return fn(ctx)
		},
	}
}

func decodeArgs(args Args, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "arg",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(args))
}
