package encoding

import (
	gencoding "google.golang.org/grpc/encoding"
)

// msgpackCodecName is registered as a gRPC content-subtype so internal
// services can exchange plain Go structs over gRPC's framing/streaming
// without a protobuf code-generation step (spec.md §6 southbound metastore
// transport). Callers select it per-call with
// grpc.CallContentSubtype(msgpackCodecName).
const msgpackCodecName = "msgpack"

type msgpackGRPCCodec struct{}

func (msgpackGRPCCodec) Marshal(v any) ([]byte, error) {
	return Marshal(v)
}

func (msgpackGRPCCodec) Unmarshal(data []byte, v any) error {
	return Unmarshal(data, v)
}

func (msgpackGRPCCodec) Name() string {
	return msgpackCodecName
}

func init() {
	gencoding.RegisterCodec(msgpackGRPCCodec{})
}
