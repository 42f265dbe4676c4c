package daemon

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Payload formats for published events and received commands.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Codec encodes and decodes message payloads.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type cborCodec struct {
	enc cbor.EncMode
}

func (c cborCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (cborCodec) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }

// NewCodec returns the codec for format. An empty format means JSON.
func NewCodec(format string) (Codec, error) {
	switch format {
	case "", FormatJSON:
		return jsonCodec{}, nil
	case FormatCBOR:
		opts := cbor.EncOptions{
			Sort:          cbor.SortCanonical,
			IndefLength:   cbor.IndefLengthForbidden,
			NilContainers: cbor.NilContainerAsNull,
			Time:          cbor.TimeRFC3339Nano,
		}
		enc, err := opts.EncMode()
		if err != nil {
			return nil, fmt.Errorf("cbor encoder: %w", err)
		}
		return cborCodec{enc: enc}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
