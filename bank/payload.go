package bank

import "encoding/binary"

// obfuscationKey is XORed over the whole pixel data region when the
// descriptor's obfuscation flag is set. The transform is its own inverse.
const obfuscationKey = 0x53

// deobfuscate returns a copy of b with the obfuscation transform reversed.
func deobfuscate(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = v ^ obfuscationKey
	}
	return out
}

// splitPayloads slices the pixel data region into one raw payload per
// sprite. Uncompressed entries store sprites back to back at a fixed
// stride; compressed entries open the region with a table of u32
// offset/length pairs, one per sprite, both relative to the region start.
// The table sits inside the region it indexes, so any obfuscation must be
// reversed before calling this.
//
// base is the absolute offset of the region, used in errors only.
func splitPayloads(region []byte, d *Descriptor, entry int, base int64) ([][]byte, error) {
	payloads := make([][]byte, 0, d.NumSprites)

	if d.Compression == CompressionNone {
		stride := d.SpriteStride()
		for j := 0; j < d.NumSprites; j++ {
			start := j * stride
			if start+stride > len(region) {
				return nil, &RangeError{Entry: entry, Offset: base + int64(start), What: "sprite payload"}
			}
			payloads = append(payloads, region[start:start+stride])
		}
		return payloads, nil
	}

	table := d.NumSprites * 8
	if table > len(region) {
		return nil, &TruncatedError{Entry: entry, Offset: base, Need: table, Have: len(region)}
	}
	for j := 0; j < d.NumSprites; j++ {
		start := binary.LittleEndian.Uint32(region[j*8:])
		length := binary.LittleEndian.Uint32(region[j*8+4:])
		if uint64(start)+uint64(length) > uint64(len(region)) {
			return nil, &RangeError{Entry: entry, Offset: base + int64(j*8), What: "sprite payload"}
		}
		payloads = append(payloads, region[start:start+length])
	}

	return payloads, nil
}
