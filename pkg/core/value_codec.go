package core

import (
	"fmt"
	"strconv"

	"github.com/vmihailenco/msgpack"
	"gopkg.in/yaml.v3"
)

// YAML and msgpack hooks. JSON lives next to the types in value.go and
// object.go.

var (
	_ yaml.Marshaler        = Value{}
	_ yaml.Unmarshaler      = (*Value)(nil)
	_ yaml.Marshaler        = (*Object)(nil)
	_ yaml.Unmarshaler      = (*Object)(nil)
	_ msgpack.CustomEncoder = Value{}
	_ msgpack.CustomDecoder = (*Value)(nil)
	_ msgpack.CustomEncoder = (*Object)(nil)
	_ msgpack.CustomDecoder = (*Object)(nil)
)

// MarshalYAML implements yaml.Marshaler. Objects become ordered mapping
// nodes and numbers keep their literal text.
func (v Value) MarshalYAML() (any, error) {
	return v.yamlNode()
}

func (v Value) yamlNode() (*yaml.Node, error) {
	switch v.kind {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}, nil
	case KindNumber:
		tag := "!!float"
		if _, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.s}, nil
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}, nil
	case KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.arr {
			child, err := e.yamlNode()
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case KindObject:
		return v.obj.yamlNode()
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := valueFromYAML(node)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func valueFromYAML(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return valueFromYAML(node.Content[0])
	case yaml.AliasNode:
		return valueFromYAML(node.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		if err := obj.fillFromYAML(node); err != nil {
			return Value{}, err
		}
		return ObjectValue(obj), nil
	case yaml.SequenceNode:
		arr := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			e, err := valueFromYAML(child)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, e)
		}
		return Value{kind: KindArray, arr: arr}, nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return Null(), nil
		case "!!str":
			return StringValue(node.Value), nil
		case "!!int", "!!float", "!!bool":
			var x any
			if err := node.Decode(&x); err != nil {
				return Value{}, err
			}
			return ValueOf(x)
		}
		return StringValue(node.Value), nil
	}
	return Value{}, fmt.Errorf("unsupported yaml node kind %d at line %d", node.Kind, node.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (o *Object) MarshalYAML() (any, error) {
	return o.yamlNode()
}

func (o *Object) yamlNode() (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	o.Range(func(k string, v Value) bool {
		var child *yaml.Node
		if child, err = v.yamlNode(); err != nil {
			return false
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			child,
		)
		return true
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: yaml node at line %d", ErrNotObject, node.Line)
	}
	*o = Object{vals: make(map[string]Value)}
	return o.fillFromYAML(node)
}

func (o *Object) fillFromYAML(node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		v, err := valueFromYAML(node.Content[i+1])
		if err != nil {
			return err
		}
		o.Set(node.Content[i].Value, v)
	}
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindNull:
		return enc.EncodeNil()
	case KindBool:
		return enc.EncodeBool(v.b)
	case KindNumber:
		if i, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			return enc.EncodeInt(i)
		}
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return err
		}
		return enc.EncodeFloat64(f)
	case KindString:
		return enc.EncodeString(v.s)
	case KindArray:
		if err := enc.EncodeArrayLen(len(v.arr)); err != nil {
			return err
		}
		for _, e := range v.arr {
			if err := e.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	case KindObject:
		return v.obj.EncodeMsgpack(enc)
	}
	return fmt.Errorf("unknown value kind %d", v.kind)
}

// DecodeMsgpack implements msgpack.CustomDecoder. Key order of nested
// objects is not carried by the decoder and comes back sorted.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	x, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	parsed, err := ValueOf(x)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder, writing keys in order.
func (o *Object) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(o.Len()); err != nil {
		return err
	}
	var err error
	o.Range(func(k string, v Value) bool {
		if err = enc.EncodeString(k); err != nil {
			return false
		}
		err = v.EncodeMsgpack(enc)
		return err == nil
	})
	return err
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (o *Object) DecodeMsgpack(dec *msgpack.Decoder) error {
	var v Value
	if err := v.DecodeMsgpack(dec); err != nil {
		return err
	}
	obj, ok := v.Object()
	if !ok {
		return fmt.Errorf("%w: got %s", ErrNotObject, v.Kind())
	}
	*o = *obj
	return nil
}
