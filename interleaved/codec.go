package interleaved

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/driedpampas/nrbf-parser/nrbf"
)

// encMode is the CBOR encoder configured with Core Deterministic Encoding
// (RFC 8949 section 4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. The same record sequence always produces
// identical CBOR bytes.
var encMode cbor.EncMode

// decMode decodes standard CBOR. Tree nodes use string keys only, so
// any-typed targets decode to map[string]any instead of the CBOR default
// map[interface{}]interface{}.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("interleaved: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("interleaved: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal renders the interleaved tree of a record sequence as JSON.
func Marshal(records []nrbf.Record) ([]byte, error) {
	return json.Marshal(FromRecords(records))
}

// MarshalIndent is Marshal with indented output.
func MarshalIndent(records []nrbf.Record, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(FromRecords(records), prefix, indent)
}

// Unmarshal parses a JSON interleaved tree back into records. Numbers are
// decoded as json.Number so 64-bit values keep full precision.
func Unmarshal(data []byte) ([]nrbf.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree []any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return ToRecords(tree)
}

// MarshalCBOR renders the interleaved tree as deterministic CBOR.
func MarshalCBOR(records []nrbf.Record) ([]byte, error) {
	return encMode.Marshal(FromRecords(records))
}

// UnmarshalCBOR parses a CBOR interleaved tree back into records.
func UnmarshalCBOR(data []byte) ([]nrbf.Record, error) {
	var tree []any
	if err := decMode.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return ToRecords(tree)
}
