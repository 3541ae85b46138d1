package expr

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"math"
)

// Node kind discriminants, each node kind contributes a distinct byte so
// structurally different ASTs never collide on hash input shape alone.
const (
	discLiteral     byte = 1
	discVariable    byte = 2
	discBinaryOp    byte = 3
	discUnaryOp     byte = 4
	discConditional byte = 5
	discCall        byte = 6
)

// value kind discriminants for HashValue.
const (
	vdNull   byte = 1
	vdBool   byte = 2
	vdNumber byte = 3
	vdString byte = 4
	vdArray  byte = 5
	vdObject byte = 6
)

// digest accumulates a structural hash using SHA-256, a cryptographically
// secure hash so cache keys cannot be forged by an adversarial expression
// (the evaluator sandboxes untrusted schema content).
type digest struct {
	h hash.Hash
}

func newDigest() *digest {
	return &digest{h: sha256.New()}
}

func (d *digest) byte(b byte) {
	_, _ = d.h.Write([]byte{b})
}

func (d *digest) bytes(b []byte) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)))
	_, _ = d.h.Write(lenBuf[:])
	_, _ = d.h.Write(b)
}

func (d *digest) string(s string) {
	d.bytes([]byte(s))
}

func (d *digest) uint64(n uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	_, _ = d.h.Write(buf[:])
}

func (d *digest) sum() [32]byte {
	var out [32]byte
	copy(out[:], d.h.Sum(nil))
	return out
}

// HashNode computes a structural hash of an expression AST: each node kind
// contributes a distinct discriminant byte and its children's hashes, so
// two ASTs hash equal iff they are structurally identical.
func HashNode(n Node) [32]byte {
	d := newDigest()
	hashNodeInto(d, n)
	return d.sum()
}

func hashNodeInto(d *digest, n Node) {
	switch t := n.(type) {
	case Literal:
		d.byte(discLiteral)
		hashValueInto(d, t.Value)
	case *Literal:
		d.byte(discLiteral)
		hashValueInto(d, t.Value)
	case Variable:
		d.byte(discVariable)
		d.uint64(uint64(len(t.Path)))
		for _, p := range t.Path {
			d.string(p)
		}
	case *Variable:
		hashNodeInto(d, *t)
	case BinaryOp:
		d.byte(discBinaryOp)
		d.string(t.Op)
		hashNodeInto(d, t.Left)
		hashNodeInto(d, t.Right)
	case *BinaryOp:
		hashNodeInto(d, *t)
	case UnaryOp:
		d.byte(discUnaryOp)
		d.string(t.Op)
		hashNodeInto(d, t.Operand)
	case *UnaryOp:
		hashNodeInto(d, *t)
	case Conditional:
		d.byte(discConditional)
		hashNodeInto(d, t.Cond)
		hashNodeInto(d, t.Then)
		hashNodeInto(d, t.Else)
	case *Conditional:
		hashNodeInto(d, *t)
	case Call:
		d.byte(discCall)
		d.string(t.Name)
		d.uint64(uint64(len(t.Args)))
		for _, a := range t.Args {
			hashNodeInto(d, a)
		}
	case *Call:
		hashNodeInto(d, *t)
	default:
		// Unknown node kind: hash its zero-information presence so it
		// never silently collides with a known kind.
		d.byte(0xff)
	}
}

// HashValue computes a structural hash of a JSON value: kind + size +
// element hashes, with object keys sorted so insertion order never affects
// the hash (two objects with the same key/value pairs in different orders
// hash equal).
func HashValue(v Value) [32]byte {
	d := newDigest()
	hashValueInto(d, v)
	return d.sum()
}

func hashValueInto(d *digest, v Value) {
	switch v.Kind() {
	case KindNull:
		d.byte(vdNull)
	case KindBool:
		d.byte(vdBool)
		if v.AsBool() {
			d.byte(1)
		} else {
			d.byte(0)
		}
	case KindNumber:
		d.byte(vdNumber)
		bits := int64ToBits(v.AsFloat())
		d.uint64(bits)
	case KindString:
		d.byte(vdString)
		d.string(v.AsString())
	case KindArray:
		arr := v.AsArray()
		d.byte(vdArray)
		d.uint64(uint64(len(arr)))
		for _, item := range arr {
			hashValueInto(d, item)
		}
	case KindObject:
		obj := v.AsObject()
		d.byte(vdObject)
		keys := obj.SortedKeys()
		d.uint64(uint64(len(keys)))
		for _, k := range keys {
			d.string(k)
			val, _ := obj.Get(k)
			hashValueInto(d, val)
		}
	}
}

func int64ToBits(f float64) uint64 {
	return math.Float64bits(f)
}
