package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrMissingField is wrapped by a DecodeError when a required key is absent or null.
var ErrMissingField = errors.New("required field missing")

// DecodeError reports a payload that does not satisfy a model's wire contract.
// Path is the dotted wire-key path of the offending field ("owner.login",
// "[2].name"); it is empty when the payload itself is not a JSON object.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Field binds one wire key to a location inside T.
type Field[T any] struct {
	Key      string
	Required bool

	decode func(raw json.RawMessage, dst *T) error
	encode func(src *T) (json.RawMessage, bool, error)
}

// Req declares a required field: decoding fails when key is absent or null.
func Req[T, V any](key string, ref func(*T) *V) Field[T] {
	f := bind(key, ref)
	f.Required = true
	return f
}

// Opt declares an optional field. Nil pointers, maps and slices are omitted on encode.
func Opt[T, V any](key string, ref func(*T) *V) Field[T] {
	return bind(key, ref)
}

func bind[T, V any](key string, ref func(*T) *V) Field[T] {
	return Field[T]{
		Key: key,
		decode: func(raw json.RawMessage, dst *T) error {
			return json.Unmarshal(raw, ref(dst))
		},
		encode: func(src *T) (json.RawMessage, bool, error) {
			p := ref(src)
			if isNil(reflect.ValueOf(p).Elem()) {
				return nil, false, nil
			}
			data, err := json.Marshal(p)
			return data, true, err
		},
	}
}

// Schema is the wire mapping table of a model type. The decoder and encoder
// consult it in order; it is the single place a type's JSON keys are named.
type Schema[T any] []Field[T]

// Keys returns the wire keys in table order.
func (s Schema[T]) Keys() []string {
	keys := make([]string, len(s))
	for i, f := range s {
		keys[i] = f.Key
	}
	return keys
}

// Decode decodes a JSON object into dst. Unknown keys are ignored.
func (s Schema[T]) Decode(data []byte, dst *T) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	var v T
	if err := s.decodeFrom(obj, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// Encode encodes src as a JSON object using the table's wire keys.
func (s Schema[T]) Encode(src *T) ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(s))
	if err := s.encodeInto(src, obj); err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// present reports whether any required key of the table carries a non-null value.
func (s Schema[T]) present(obj map[string]json.RawMessage) bool {
	for _, f := range s {
		if !f.Required {
			continue
		}
		if raw, ok := obj[f.Key]; ok && !isNull(raw) {
			return true
		}
	}
	return false
}

func (s Schema[T]) decodeFrom(obj map[string]json.RawMessage, dst *T) error {
	for _, f := range s {
		raw, ok := obj[f.Key]
		if !ok || isNull(raw) {
			if f.Required {
				return &DecodeError{Path: f.Key, Err: ErrMissingField}
			}
			continue
		}
		if err := f.decode(raw, dst); err != nil {
			return fieldError(f.Key, err)
		}
	}
	return nil
}

func (s Schema[T]) encodeInto(src *T, obj map[string]json.RawMessage) error {
	for _, f := range s {
		raw, ok, err := f.encode(src)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.Key, err)
		}
		if ok {
			obj[f.Key] = raw
		}
	}
	return nil
}

// DecodeList decodes a JSON array whose elements decode through *T's UnmarshalJSON.
// Element failures are reported with an index-prefixed path.
func DecodeList[T any, PT interface {
	*T
	json.Unmarshaler
}](data []byte) ([]T, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &DecodeError{Err: err}
	}

	items := make([]T, len(raws))
	for i, raw := range raws {
		if err := PT(&items[i]).UnmarshalJSON(raw); err != nil {
			return nil, fieldError(fmt.Sprintf("[%d]", i), err)
		}
	}
	return items, nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	if isNull(data) {
		return nil, &DecodeError{Err: errors.New("expected object, got null")}
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return obj, nil
}

// fieldError prefixes key onto the path of a nested DecodeError, or wraps a
// plain decoding error (type mismatch, bad timestamp) as a DecodeError at key.
func fieldError(key string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return &DecodeError{Path: joinPath(key, de.Path), Err: de.Err}
	}
	return &DecodeError{Path: key, Err: err}
}

func joinPath(prefix, path string) string {
	if path == "" {
		return prefix
	}
	if path[0] == '[' {
		return prefix + path
	}
	return prefix + "." + path
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
