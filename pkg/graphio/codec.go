package graphio

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/numflow/numflow/pkg/engine"
)

// =============================================================================
// Binary Codec - Cache Blobs
// =============================================================================

// Codec encodes and decodes values for binary storage.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
	Name() string
}

// JSONCodec implements JSON encoding. Mostly useful for debugging
// cache contents; the default is MsgPackCodec.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v interface{}) ([]byte, error)    { return json.Marshal(v) }
func (c *JSONCodec) Decode(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (c *JSONCodec) Name() string                            { return "json" }

// MsgPackCodec implements MessagePack encoding.
type MsgPackCodec struct{}

func (c *MsgPackCodec) Encode(v interface{}) ([]byte, error)    { return msgpack.Marshal(v) }
func (c *MsgPackCodec) Decode(data []byte, v interface{}) error { return msgpack.Unmarshal(data, v) }
func (c *MsgPackCodec) Name() string                            { return "msgpack" }

// Serializer combines a codec with zstd compression for compact cache blobs.
type Serializer struct {
	codec    Codec
	compress bool
}

// NewSerializer creates a serializer with the given codec.
func NewSerializer(codec Codec, compress bool) *Serializer {
	return &Serializer{codec: codec, compress: compress}
}

// DefaultSerializer returns the standard serializer: msgpack with zstd.
func DefaultSerializer() *Serializer {
	return NewSerializer(&MsgPackCodec{}, true)
}

// Serialize encodes and compresses a value.
func (s *Serializer) Serialize(v interface{}) ([]byte, error) {
	data, err := s.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode (%s): %w", s.codec.Name(), err)
	}

	if s.compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer enc.Close()
		data = enc.EncodeAll(data, nil)
	}

	return data, nil
}

// Deserialize decompresses and decodes a value.
func (s *Serializer) Deserialize(data []byte, v interface{}) error {
	if s.compress {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("zstd decompress: %w", err)
		}
	}

	if err := s.codec.Decode(data, v); err != nil {
		return fmt.Errorf("decode (%s): %w", s.codec.Name(), err)
	}
	return nil
}

// =============================================================================
// Result Blobs
// =============================================================================

// MarshalResult encodes an execution result as a compact binary blob.
func MarshalResult(res engine.Result) ([]byte, error) {
	return DefaultSerializer().Serialize(res)
}

// UnmarshalResult decodes a binary blob produced by MarshalResult.
func UnmarshalResult(data []byte) (engine.Result, error) {
	var res engine.Result
	if err := DefaultSerializer().Deserialize(data, &res); err != nil {
		return nil, err
	}
	return res, nil
}
