package nrbf

import (
	"io"

	nrbferr "github.com/driedpampas/nrbf-parser/errors"
)

// Validate checks that the message is structurally sound: it starts with a
// serialization header, ends with MessageEnd, and every record in between
// would encode cleanly, including id uniqueness and reference closure. It
// works by running a full encode against a discarding writer, so anything
// Validate accepts EncodeMessage will serialize.
func (m *Message) Validate() error {
	if len(m.Records) == 0 {
		return nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindMissingHeader).
			Detail("empty message").
			Build()
	}
	if _, ok := m.Records[0].(*SerializationHeader); !ok {
		return nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindMissingHeader).
			Detail("first record is %s, want SerializedStreamHeader", m.Records[0].Type()).
			Build()
	}
	if _, ok := m.Records[len(m.Records)-1].(*MessageEnd); !ok {
		return nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindMissingTerminator).
			Detail("last record is %s, want MessageEnd", m.Records[len(m.Records)-1].Type()).
			Build()
	}
	return EncodeMessage(io.Discard, m)
}
