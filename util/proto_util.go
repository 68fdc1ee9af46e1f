package util

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// NormalizeData converts process data to the JSON value space: numbers become
// float64 and nested slices []any. Values without a JSON form are rejected.
func NormalizeData(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	s, err := structpb.NewStruct(data)
	if err != nil {
		return nil, fmt.Errorf("process data is not serializable: %w", err)
	}
	return s.AsMap(), nil
}

// ProtoDataEncDec stores process data as a protobuf Struct.
type ProtoDataEncDec struct{}

var _ EncoderDecoder[map[string]any] = new(ProtoDataEncDec)

func NewProtoDataEncoderDecoder() *ProtoDataEncDec {
	return &ProtoDataEncDec{}
}

func (p *ProtoDataEncDec) Encode(value map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(value)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func (p *ProtoDataEncDec) Decode(data []byte) (*map[string]any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	m := s.AsMap()
	return &m, nil
}
