package nrbf

import (
	nrbferr "github.com/driedpampas/nrbf-parser/errors"
)

// classMetadata is the declared shape of a class: its identity block and,
// when the declaring record carried them, its member type descriptors.
// Registered once per stream under the declaring record's object id and
// immutable thereafter; ClassWithID records resolve against it.
type classMetadata struct {
	Info      ClassInfo
	Types     MemberTypeInfo // nil for the AndTypes-less class records
	LibraryID int32
	HasLib    bool
}

// classRegistry maps metadata ids to declared class shapes. Scoped to one
// Decoder or Encoder instance, which is to say one stream.
type classRegistry map[int32]*classMetadata

// declare registers a class shape. Redeclaring an id is an error; the
// registry never reassigns or evicts within a stream.
func (c classRegistry) declare(phase nrbferr.Phase, offset int64, meta *classMetadata) *nrbferr.Error {
	id := meta.Info.ObjectID
	if _, ok := c[id]; ok {
		return nrbferr.New(phase, nrbferr.KindDuplicateClassID).
			Offset(offset).
			ID(id).
			Build()
	}
	c[id] = meta
	return nil
}

// lookup returns the class shape declared under id.
func (c classRegistry) lookup(id int32) (*classMetadata, bool) {
	meta, ok := c[id]
	return meta, ok
}
