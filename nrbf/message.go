package nrbf

// Message is the ordered record sequence of one decoded NRBF stream,
// beginning with SerializationHeader and ending with MessageEnd, together
// with the id tables built while decoding it. The sequence owns the
// records; id lookups return weak handles into it.
type Message struct {
	Records []Record

	refs *referenceTable
}

// Header returns the message's serialization header.
func (m *Message) Header() *SerializationHeader {
	if len(m.Records) == 0 {
		return nil
	}
	h, _ := m.Records[0].(*SerializationHeader)
	return h
}

// Object resolves an object id to the record that declared it. The result
// is a non-owning handle; nil if the id is unknown.
func (m *Message) Object(id int32) Record {
	if m.refs == nil {
		return nil
	}
	r, _ := m.refs.resolveObject(id)
	return r
}

// Library resolves a library id to its declared name.
func (m *Message) Library(id int32) (string, bool) {
	if m.refs == nil {
		return "", false
	}
	return m.refs.resolveLibrary(id)
}

// ObjectIDs returns all declared object ids in first-appearance order.
func (m *Message) ObjectIDs() []int32 {
	if m.refs == nil {
		return nil
	}
	return append([]int32(nil), m.refs.objectOrder...)
}

// LibraryIDs returns all declared library ids in first-appearance order.
func (m *Message) LibraryIDs() []int32 {
	if m.refs == nil {
		return nil
	}
	return append([]int32(nil), m.refs.libraryOrder...)
}
