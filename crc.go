package sprbank

import (
	"fmt"
	"hash/crc32"
)

// checksum returns the uppercase hex CRC-32 (IEEE) of b, the form stored
// in the catalog for both whole banks and individual entry payloads.
func checksum(b []byte) string {
	return fmt.Sprintf("%.*X", crc32.Size<<1, crc32.ChecksumIEEE(b))
}
