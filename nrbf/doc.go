// Package nrbf decodes and encodes the .NET Remoting Binary Format
// (MS-NRBF), the serialization format produced by BinaryFormatter and
// found in .NET resource and metadata streams.
//
// # Decoding
//
// Decode a complete message:
//
//	msg, err := nrbf.DecodeMessage(bytes.NewReader(data))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or stream record by record:
//
//	d := nrbf.NewDecoder(r)
//	for {
//	    rec, err := d.DecodeNext()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if rec == nil {
//	        break // MessageEnd consumed
//	    }
//	}
//
// # Encoding
//
// Encode a message back to bytes:
//
//	var buf bytes.Buffer
//	err := nrbf.EncodeMessage(&buf, msg)
//
// A decoded message re-encodes to the exact bytes it was decoded from.
// Null runs, type descriptors, and id assignments are all preserved as
// written, so decode followed by encode is byte-identical.
//
// # The record model
//
// Every wire record maps to one concrete Record implementation
// (SerializationHeader, ClassWithMembersAndTypes, BinaryObjectString,
// BinaryArray, MemberReference, and so on). Class and array records carry
// their member and element values inline as MemberValue slots; a null-run
// record occupies several consecutive slots.
//
// Object and library ids are resolved through the Message:
//
//	rec := msg.Object(id)        // record that declared id, or nil
//	name, ok := msg.Library(id)  // library name for id
//
// Forward references are legal; reference closure is checked when
// MessageEnd is processed, on both the decode and encode paths.
//
// # Errors
//
// All failures are structured errors from this module's errors package,
// carrying the phase, a machine-readable kind, the byte offset, and the
// record index where the failure occurred.
package nrbf
