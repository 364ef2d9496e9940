// Package interleaved converts NRBF record sequences to and from a
// JSON/CBOR-friendly tree that mirrors the stream's structure: one node
// per top-level record, nested values inline under their member names.
//
// Class nodes carry their identity under $-prefixed keys ($record, $type,
// $id, $member_names, $member_type_info) and one key per member. The
// member order is the explicit $member_names list, so the tree survives
// codecs that do not preserve object key order. A null run covering
// several members is stored under the first covered name.
//
// The tree is lossless with respect to the record model: for any decoded
// message,
//
//	tree := interleaved.FromRecords(msg.Records)
//	records, _ := interleaved.ToRecords(tree)
//
// rebuilds the exact records, so re-encoding them reproduces the original
// stream byte for byte. The same holds through the JSON codec
// (Marshal/Unmarshal) and the deterministic CBOR codec
// (MarshalCBOR/UnmarshalCBOR).
package interleaved
