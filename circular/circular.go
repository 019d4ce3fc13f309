package circular

import "fmt"

// Mod returns r modulo n in [0, n). n must be positive.
func Mod(r, n int) int {
	r %= n
	if r < 0 {
		r += n
	}
	return r
}

// Rotate returns a newly allocated copy of seq rotated left by r: seq[r]
// becomes the first symbol and the prefix seq[:r] wraps around to the end. r
// is taken modulo len(seq); rotating by 0 returns an identical copy.
func Rotate(seq []byte, r int) []byte {
	return RotateInto(make([]byte, len(seq)), seq, r)
}

// RotateInto is Rotate with a caller-supplied buffer. dst is resized to
// len(seq) (reallocated if its capacity is too small) and returned. dst must
// not overlap seq.
func RotateInto(dst, seq []byte, r int) []byte {
	n := len(seq)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	if n == 0 {
		return dst
	}
	r = Mod(r, n)
	k := copy(dst, seq[r:])
	copy(dst[k:], seq[:r])
	return dst
}

// At returns the symbol at position i of seq rotated by r, without
// materializing the rotation.
func At(seq []byte, r, i int) byte {
	return seq[Mod(r+i, len(seq))]
}

// Offset is a rotation offset that is either resolved to a value or
// unresolved. The zero Offset is unresolved.
type Offset struct {
	value    int
	resolved bool
}

// Unresolved returns an Offset that carries no value.
func Unresolved() Offset { return Offset{} }

// Resolved returns an Offset set to r.
func Resolved(r int) Offset { return Offset{value: r, resolved: true} }

// Get returns the offset value and whether it is resolved.
func (o Offset) Get() (int, bool) { return o.value, o.resolved }

// IsResolved reports whether the offset carries a value.
func (o Offset) IsResolved() bool { return o.resolved }

// Value returns the offset value. It panics if the offset is unresolved.
func (o Offset) Value() int {
	if !o.resolved {
		panic("circular: value of an unresolved offset")
	}
	return o.value
}

func (o Offset) String() string {
	if !o.resolved {
		return "unresolved"
	}
	return fmt.Sprint(o.value)
}
