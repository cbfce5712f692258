package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// UnmarshalJson converts a decoded message payload into T. Payloads that
// already are a T are returned as is; raw JSON bytes are decoded directly.
func UnmarshalJson[T any](v any) (T, error) {
	switch payload := v.(type) {
	case T:
		return payload, nil
	case jsoniter.RawMessage:
		return decode[T](payload)
	case []byte:
		return decode[T](payload)
	}
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return *new(T), errors.WithMessage(err, "marshal json")
	}
	return decode[T](data)
}

func decode[T any](data []byte) (T, error) {
	var result T
	if err := jsoniter.Unmarshal(data, &result); err != nil {
		return *new(T), errors.WithMessage(err, "unmarshal json")
	}
	return result, nil
}
