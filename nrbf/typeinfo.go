package nrbf

import (
	nrbferr "github.com/driedpampas/nrbf-parser/errors"
)

// Member type info wire layout: class records write all member type tags
// first, then each tag's payload in the same order. BinaryArray records
// write a single tag immediately followed by its payload. Both paths share
// the payload codec below.

// readTypeTag reads and validates one member type tag byte.
func (d *Decoder) readTypeTag() (BinaryType, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, d.wrap(err)
	}
	t := BinaryType(b)
	if !t.valid() {
		return 0, d.locate(nrbferr.UnknownTypeTag(nrbferr.PhaseDecode, d.r.Position()-1, b))
	}
	return t, nil
}

// readTypePayload reads the tag-dependent payload and completes the
// descriptor. Tags without payloads yield a descriptor holding only the tag.
func (d *Decoder) readTypePayload(tag BinaryType) (TypeDescriptor, error) {
	td := TypeDescriptor{Tag: tag}
	switch tag {
	case TypePrimitive, TypePrimitiveArray:
		b, err := d.r.ReadByte()
		if err != nil {
			return td, d.wrap(err)
		}
		pt := PrimitiveType(b)
		if !pt.valid() {
			return td, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindUnknownPrimitiveType).
				Offset(d.r.Position() - 1).
				Detail("primitive type 0x%02x", b).
				Build())
		}
		td.Primitive = pt
	case TypeSystemClass:
		name, err := d.r.ReadString()
		if err != nil {
			return td, d.wrap(err)
		}
		td.ClassName = name
	case TypeClass:
		name, err := d.r.ReadString()
		if err != nil {
			return td, d.wrap(err)
		}
		libID, err := d.r.ReadInt32()
		if err != nil {
			return td, d.wrap(err)
		}
		td.ClassName = name
		td.LibraryID = libID
		d.refs.noteLibraryRef(libID)
	}
	return td, nil
}

// readTypeDescriptor reads a tag immediately followed by its payload
// (the BinaryArray element type layout).
func (d *Decoder) readTypeDescriptor() (TypeDescriptor, error) {
	tag, err := d.readTypeTag()
	if err != nil {
		return TypeDescriptor{}, err
	}
	return d.readTypePayload(tag)
}

// readMemberTypeInfo reads count member descriptors in the class record
// layout: count tag bytes, then count payloads.
func (d *Decoder) readMemberTypeInfo(count int) (MemberTypeInfo, error) {
	tags := make([]BinaryType, count)
	for i := range tags {
		tag, err := d.readTypeTag()
		if err != nil {
			return nil, err
		}
		tags[i] = tag
	}
	info := make(MemberTypeInfo, count)
	for i, tag := range tags {
		td, err := d.readTypePayload(tag)
		if err != nil {
			return nil, err
		}
		info[i] = td
	}
	return info, nil
}

// writeTypePayload writes the tag-dependent payload of a descriptor.
func (e *Encoder) writeTypePayload(td TypeDescriptor) {
	switch td.Tag {
	case TypePrimitive, TypePrimitiveArray:
		e.w.Byte(byte(td.Primitive))
	case TypeSystemClass:
		e.w.WriteString(td.ClassName)
	case TypeClass:
		e.w.WriteString(td.ClassName)
		e.w.WriteInt32(td.LibraryID)
		e.refs.noteLibraryRef(td.LibraryID)
	}
}

// writeTypeDescriptor writes a tag immediately followed by its payload.
func (e *Encoder) writeTypeDescriptor(td TypeDescriptor) {
	e.w.Byte(byte(td.Tag))
	e.writeTypePayload(td)
}

// writeMemberTypeInfo writes descriptors in the class record layout:
// all tags, then all payloads.
func (e *Encoder) writeMemberTypeInfo(info MemberTypeInfo) {
	for _, td := range info {
		e.w.Byte(byte(td.Tag))
	}
	for _, td := range info {
		e.writeTypePayload(td)
	}
}
