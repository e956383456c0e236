package types

import (
	"bytes"
)

// MemoryFile is a named byte buffer standing in for a browser File object.
// Blobs pulled back from the object store are materialized as MemoryFiles so
// they can be re-uploaded to the compiler service as multipart form data.
type MemoryFile struct {
	Name string
	Data []byte
}

func NewMemoryFile(name string, data []byte) *MemoryFile {
	return &MemoryFile{Name: name, Data: data}
}

func (f *MemoryFile) Reader() *bytes.Reader {
	return bytes.NewReader(f.Data)
}

func (f *MemoryFile) Size() int64 {
	return int64(len(f.Data))
}
