// Package monitor implements the gRPC control API of the guardian monitor.
//
// The service is described by hand over protobuf well-known types: requests
// and responses are structpb.Struct or emptypb.Empty messages carried by the
// default protobuf codec, so no generated code is required on either side.
package monitor
