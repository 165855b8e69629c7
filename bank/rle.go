package bank

import (
	"bytes"
	"encoding/binary"
)

// Both codecs share one shape: a control value whose top bit selects a
// literal run (copy the next n units verbatim) or a repeat (read one unit,
// emit it n times), with n in the remaining bits. They differ only in unit
// width: one byte against one little-endian 32-bit word. Runs that a
// malformed control would extend past the end of the input are clamped.

// DecompressBytewise expands a bytewise run-length stream.
func DecompressBytewise(src []byte) []byte {
	var out []byte
	for i := 0; i < len(src); {
		control := src[i]
		i++
		n := int(control & 0x7f)
		if control&0x80 != 0 {
			if i+n > len(src) {
				n = len(src) - i
			}
			out = append(out, src[i:i+n]...)
			i += n
			continue
		}
		if i >= len(src) {
			break
		}
		out = append(out, bytes.Repeat(src[i:i+1], n)...)
		i++
	}
	return out
}

// DecompressWordwise expands a wordwise run-length stream. Counts occupy
// the low 28 bits of the control word and are measured in 4-byte units.
func DecompressWordwise(src []byte) []byte {
	var out []byte
	for i := 0; i+4 <= len(src); {
		control := binary.LittleEndian.Uint32(src[i:])
		i += 4
		n := int(control & 0x0fffffff)
		if control&0x80000000 != 0 {
			end := i + n*4
			if end > len(src) {
				end = len(src)
			}
			out = append(out, src[i:end]...)
			i = end
			continue
		}
		if i+4 > len(src) {
			break
		}
		out = append(out, bytes.Repeat(src[i:i+4], n)...)
		i += 4
	}
	return out
}

// CompressBytewise is the reference encoder for DecompressBytewise. It is
// not tuned for ratio: repeats of three or more collapse, everything else
// is emitted as literal runs.
func CompressBytewise(src []byte) []byte {
	var out []byte
	for i := 0; i < len(src); {
		j := i + 1
		for j < len(src) && src[j] == src[i] && j-i < 0x7f {
			j++
		}
		if j-i >= 3 {
			out = append(out, byte(j-i), src[i])
			i = j
			continue
		}

		start := i
		for i < len(src) && i-start < 0x7f {
			if i+2 < len(src) && src[i] == src[i+1] && src[i] == src[i+2] {
				break
			}
			i++
		}
		out = append(out, 0x80|byte(i-start))
		out = append(out, src[start:i]...)
	}
	return out
}

// CompressWordwise is the reference encoder for DecompressWordwise. The
// input length must be a multiple of four; trailing bytes are dropped.
func CompressWordwise(src []byte) []byte {
	words := len(src) / 4
	word := func(i int) []byte { return src[i*4 : i*4+4] }

	var out []byte
	control := func(v uint32) {
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], v)
		out = append(out, tmp[:]...)
	}

	for i := 0; i < words; {
		j := i + 1
		for j < words && bytes.Equal(word(j), word(i)) {
			j++
		}
		if j-i >= 2 {
			control(uint32(j - i))
			out = append(out, word(i)...)
			i = j
			continue
		}

		start := i
		for i < words {
			if i+1 < words && bytes.Equal(word(i), word(i+1)) {
				break
			}
			i++
		}
		control(0x80000000 | uint32(i-start))
		out = append(out, src[start*4:i*4]...)
	}
	return out
}
