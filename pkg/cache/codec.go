package cache

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes cache values.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

var (
	JSON    Codec = jsonCodec{}
	MsgPack Codec = msgpackCodec{}
)

// CodecByName resolves a configured codec name. An empty name means JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return MsgPack, nil
	default:
		return nil, fmt.Errorf("unknown cache codec %q", name)
	}
}

// Encode marshals v and tags failures with ErrCodec.
func Encode(c Codec, v any) ([]byte, error) {
	data, err := c.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrCodec, fmt.Errorf("%s encode: %w", c.Name(), err))
	}
	return data, nil
}

// Decode unmarshals data into dest and tags failures with ErrCodec.
func Decode(c Codec, data []byte, dest any) error {
	if err := c.Unmarshal(data, dest); err != nil {
		return errors.Join(ErrCodec, fmt.Errorf("%s decode: %w", c.Name(), err))
	}
	return nil
}
