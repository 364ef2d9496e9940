package nrbf_test

// Wire fixture builders shared by the decode, encode, and round-trip tests.
// All fixtures are hand-assembled byte streams so the tests pin the exact
// wire layout, not just self-consistency.

func i32(v int32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// lpstr encodes a short string with its length prefix. Test strings stay
// under 128 bytes so the prefix is a single byte.
func lpstr(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func stream(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// headerBytes is a SerializedStreamHeader with root id 1 and version 1.0.
func headerBytes() []byte {
	return stream([]byte{0x00}, i32(1), i32(-1), i32(1), i32(0))
}

var endBytes = []byte{0x0b}

// minimalMessage is the smallest well-formed stream: header then terminator.
func minimalMessage() []byte {
	return stream(headerBytes(), endBytes)
}

// classWithStringMessage declares library 2, a one-member class (object 1)
// whose String member points at BinaryObjectString object 3.
func classWithStringMessage() []byte {
	return stream(
		headerBytes(),
		[]byte{0x0c}, i32(2), lpstr("lib"),
		[]byte{0x05}, i32(1), lpstr("C"), i32(1), lpstr("s"),
		[]byte{0x01}, // member type tags: String
		i32(2),       // library id
		[]byte{0x06}, i32(3), lpstr("hello"),
		endBytes,
	)
}

// selfRefMessage is a system class whose single Object member references
// the class's own object id.
func selfRefMessage() []byte {
	return stream(
		headerBytes(),
		[]byte{0x04}, i32(1), lpstr("N"), i32(1), lpstr("next"),
		[]byte{0x02}, // member type tags: Object
		[]byte{0x09}, i32(1),
		endBytes,
	)
}

// classWithIDMessage declares a typed system class (object 1, metadata 1)
// and a second instance via ClassWithId (object 2) reusing that metadata.
func classWithIDMessage() []byte {
	return stream(
		headerBytes(),
		[]byte{0x04}, i32(1), lpstr("P"), i32(1), lpstr("x"),
		[]byte{0x00},       // member type tags: Primitive
		[]byte{0x08},       // payload: Int32
		i32(7),             // member value
		[]byte{0x01}, i32(2), i32(1),
		i32(9), // member value per registered metadata
		endBytes,
	)
}

// nullRunArrayMessage is a five-slot object array filled by a single null,
// a compact run of three, and one more null. The run layout must survive a
// round trip byte for byte.
func nullRunArrayMessage() []byte {
	return stream(
		headerBytes(),
		[]byte{0x10}, i32(1), i32(5),
		[]byte{0x0a},
		[]byte{0x0d, 0x03},
		[]byte{0x0a},
		endBytes,
	)
}

// primitiveArrayMessage is an Int32 array of three packed values.
func primitiveArrayMessage() []byte {
	return stream(
		headerBytes(),
		[]byte{0x0f}, i32(1), i32(3), []byte{0x08},
		i32(10), i32(20), i32(30),
		endBytes,
	)
}

// rectangularArrayMessage is a 2x2 rectangular BinaryArray of Int32.
func rectangularArrayMessage() []byte {
	return stream(
		headerBytes(),
		[]byte{0x07}, i32(1),
		[]byte{0x02},       // shape: Rectangular
		i32(2), i32(2), i32(2),
		[]byte{0x00, 0x08}, // element type: Primitive Int32
		i32(1), i32(2), i32(3), i32(4),
		endBytes,
	)
}

// stringArrayMessage is a three-slot string array: a string, a reference
// back to it, and a null.
func stringArrayMessage() []byte {
	return stream(
		headerBytes(),
		[]byte{0x11}, i32(1), i32(3),
		[]byte{0x06}, i32(2), lpstr("a"),
		[]byte{0x09}, i32(2),
		[]byte{0x0a},
		endBytes,
	)
}
