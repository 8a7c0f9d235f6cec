package value

// ObjType discriminates heap object variants. The core only ever allocates
// one kind of object.
type ObjType int

const (
	ObjString ObjType = iota
)

// Object is a heap-allocated record linked into the VM's intrusive
// deallocation list. Next is set and walked only by the VM; the rest of
// the program treats Object as opaque and compares it by pointer identity.
type Object struct {
	Type  ObjType
	Chars []byte
	Hash  uint32
	Next  *Object
}

// HashBytes computes the FNV-1a hash spec.md §4.5 pins as the interning
// hash: h = 2166136261; for b in bytes: h = (h XOR b) * 16777619, with
// 32-bit wraparound. This is hand-rolled rather than hash/fnv because the
// exact recurrence is part of the ABI between the compiler's interning and
// the VM's table — any hash that agrees on every input would do, but this
// is the one spec.md specifies.
func HashBytes(b []byte) uint32 {
	var h uint32 = 2166136261
	for _, c := range b {
		h ^= uint32(c)
		h *= 16777619
	}
	return h
}

// NewObjString allocates a fresh, un-interned string object. It neither
// consults a strings table nor links the result into an object list;
// callers that intern strings do both themselves.
func NewObjString(chars []byte) *Object {
	return &Object{
		Type:  ObjString,
		Chars: chars,
		Hash:  HashBytes(chars),
	}
}
