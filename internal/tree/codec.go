package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Decode parses a JSON document into a Value, keeping object keys in the
// order they appear in the document.
func Decode(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, errors.New("decode result tree: empty document")
	}
	if !api.Valid(data) {
		return Value{}, errors.New("decode result tree: invalid JSON")
	}
	iter := api.BorrowIterator(data)
	defer api.ReturnIterator(iter)

	v := readValue(iter)
	if iter.Error != nil && iter.Error != io.EOF {
		return Value{}, fmt.Errorf("decode result tree: %w", iter.Error)
	}
	if iter.WhatIsNext() != jsoniter.InvalidValue {
		return Value{}, fmt.Errorf("decode result tree: unexpected data after top-level value")
	}
	return v, nil
}

// DecodeReader reads r fully and decodes it.
func DecodeReader(r io.Reader) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Value{}, fmt.Errorf("read result tree: %w", err)
	}
	return Decode(data)
}

func readValue(iter *jsoniter.Iterator) Value {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		obj := NewObject()
		iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
			obj.set(field, readValue(it))
			return it.Error == nil
		})
		return obj
	case jsoniter.ArrayValue:
		arr := Value{kind: KindArray, items: []Value{}}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			arr.items = append(arr.items, readValue(it))
			return it.Error == nil
		})
		return arr
	case jsoniter.StringValue:
		return String(iter.ReadString())
	case jsoniter.NumberValue:
		num := iter.ReadNumber()
		f, err := strconv.ParseFloat(string(num), 64)
		if err != nil {
			iter.ReportError("readValue", "invalid number "+string(num))
			return Value{}
		}
		return Number(f)
	case jsoniter.BoolValue:
		return Bool(iter.ReadBool())
	case jsoniter.NilValue:
		iter.ReadNil()
		return Value{}
	}
	iter.ReportError("readValue", "expected a JSON value")
	return Value{}
}

// MarshalJSON writes v with object keys in their stored order.
func (v Value) MarshalJSON() ([]byte, error) {
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)

	writeValue(stream, v)
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// UnmarshalJSON lets a Value sit inside other JSON-decoded structs.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func writeValue(stream *jsoniter.Stream, v Value) {
	switch v.kind {
	case KindNull:
		stream.WriteNil()
	case KindBool:
		stream.WriteBool(v.b)
	case KindNumber:
		stream.WriteFloat64(v.n)
	case KindString:
		stream.WriteString(v.s)
	case KindObject:
		stream.WriteObjectStart()
		for i, m := range v.members {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(m.Key)
			writeValue(stream, m.Value)
		}
		stream.WriteObjectEnd()
	case KindArray:
		stream.WriteArrayStart()
		for i, it := range v.items {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, it)
		}
		stream.WriteArrayEnd()
	}
}

// Indent renders v as indented JSON for saving to disk.
func Indent(v Value) ([]byte, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
