package nrbf

import (
	nrbferr "github.com/driedpampas/nrbf-parser/errors"
)

// referenceTable indexes object ids and library ids to the records that
// define them. It never owns a record: the Message's record sequence does.
// Ids are assigned by the stream itself; the table only indexes them, in
// first-appearance order, and tracks which ids have been referenced so the
// graph can be checked for closure at MessageEnd.
type referenceTable struct {
	objects      map[int32]Record
	objectOrder  []int32
	libraries    map[int32]string
	libraryOrder []int32
	objectRefs   map[int32]struct{}
	libraryRefs  map[int32]struct{}
}

func newReferenceTable() *referenceTable {
	return &referenceTable{
		objects:     make(map[int32]Record),
		libraries:   make(map[int32]string),
		objectRefs:  make(map[int32]struct{}),
		libraryRefs: make(map[int32]struct{}),
	}
}

func (t *referenceTable) registerObject(phase nrbferr.Phase, offset int64, id int32, r Record) *nrbferr.Error {
	if _, ok := t.objects[id]; ok {
		return nrbferr.DuplicateObjectID(phase, offset, id)
	}
	t.objects[id] = r
	t.objectOrder = append(t.objectOrder, id)
	return nil
}

func (t *referenceTable) registerLibrary(phase nrbferr.Phase, offset int64, id int32, name string) *nrbferr.Error {
	if _, ok := t.libraries[id]; ok {
		return nrbferr.New(phase, nrbferr.KindDuplicateLibraryID).
			Offset(offset).
			ID(id).
			Build()
	}
	t.libraries[id] = name
	t.libraryOrder = append(t.libraryOrder, id)
	return nil
}

// noteObjectRef records that id was referenced by a MemberReference.
// Forward references are legal; closure is checked at MessageEnd.
func (t *referenceTable) noteObjectRef(id int32) {
	t.objectRefs[id] = struct{}{}
}

// noteLibraryRef records that id was referenced by a class record or a
// Class type descriptor.
func (t *referenceTable) noteLibraryRef(id int32) {
	t.libraryRefs[id] = struct{}{}
}

// resolveObject returns the record registered under id. The returned
// Record is a weak handle: a lookup, never a transfer of ownership, so
// cyclic references cannot recurse.
func (t *referenceTable) resolveObject(id int32) (Record, bool) {
	r, ok := t.objects[id]
	return r, ok
}

func (t *referenceTable) resolveLibrary(id int32) (string, bool) {
	name, ok := t.libraries[id]
	return name, ok
}

// checkClosure verifies every referenced object and library id was
// registered. Called when MessageEnd is processed; the first missing id is
// reported.
func (t *referenceTable) checkClosure(phase nrbferr.Phase) *nrbferr.Error {
	for id := range t.objectRefs {
		if _, ok := t.objects[id]; !ok {
			return nrbferr.DanglingReference(phase, id)
		}
	}
	for id := range t.libraryRefs {
		if _, ok := t.libraries[id]; !ok {
			return nrbferr.DanglingReference(phase, id)
		}
	}
	return nil
}
