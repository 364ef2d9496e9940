// Package nrbfparser is a decoder and encoder for the .NET Remoting
// Binary Format (MS-NRBF).
//
// The module is organized as:
//
//	nrbf/         record model, streaming Decoder and Encoder, validation
//	interleaved/  JSON/CBOR tree form of a record sequence
//	errors/       structured errors with phase, kind, offset, record index
//	cmd/nrbf/     CLI: inspect, round-trip check, JSON/CBOR export
//
// The core guarantee is byte-exact round-tripping: decoding a stream and
// re-encoding the resulting records reproduces the input exactly,
// including compact null runs and id assignments.
package nrbfparser
