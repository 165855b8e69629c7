package sprbank

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBank builds a two-entry container: each entry is an uncompressed
// 8bpp 2x2 single-sprite image with a four-color palette.
func testBank(t *testing.T) []byte {
	t.Helper()

	entry := new(bytes.Buffer)
	binary.Write(entry, binary.LittleEndian, uint32(36)) // descriptor + palette + pixels
	entry.Write([]byte{
		0x00, // flags
		8,    // 8bpp indexed
		1, 0, // one sprite
		2, 2, // 2x2 pixels
		0, 0, // draw offsets
		1, 1, // 1x1 grid
		17,   // reserved
		1,    // one palette
		0, 0, // transparent index
		24, 0, // palette offset
		32, 0, // pixel offset
		0, 0, // padding
	})
	for _, c := range []uint16{0xf800, 0x07e0, 0x001f, 0xffff} {
		binary.Write(entry, binary.LittleEndian, c)
	}
	entry.Write([]byte{0, 1, 2, 3})
	require.Equal(t, 36, entry.Len())

	b := new(bytes.Buffer)
	binary.Write(b, binary.LittleEndian, uint32(8))
	binary.Write(b, binary.LittleEndian, uint32(8+36))
	b.Write(entry.Bytes())
	b.Write(entry.Bytes())
	return b.Bytes()
}

func discardLogger() *log.Logger {
	return log.New(ioutil.Discard, "", 0)
}

func TestExtractSubimages(t *testing.T) {
	dir := t.TempDir()

	s := New(nil, discardLogger())
	rep, err := s.Extract(testBank(t), ExtractOptions{OutputDir: dir})
	require.NoError(t, err)
	assert.Zero(t, rep.Failed())

	for _, name := range []string{"image-0-0.png", "image-1-0.png"} {
		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err, name)
		m, err := png.Decode(f)
		f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, 2, m.Bounds().Dx())
		assert.Equal(t, 2, m.Bounds().Dy())
	}
}

func TestExtractSheetScaled(t *testing.T) {
	dir := t.TempDir()

	s := New(nil, discardLogger())
	rep, err := s.Extract(testBank(t), ExtractOptions{
		OutputDir: dir,
		Mode:      ExportSheet,
		Scale:     3,
	})
	require.NoError(t, err)
	assert.Zero(t, rep.Failed())

	f, err := os.Open(filepath.Join(dir, "image-0.png"))
	require.NoError(t, err)
	defer f.Close()
	m, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 6, m.Bounds().Dx())
	assert.Equal(t, 6, m.Bounds().Dy())
}

func TestExtractSprites(t *testing.T) {
	dir := t.TempDir()

	s := New(nil, discardLogger())
	rep, err := s.Extract(testBank(t), ExtractOptions{
		OutputDir: dir,
		Mode:      ExportSprites,
		Format:    FormatGIF,
	})
	require.NoError(t, err)
	assert.Zero(t, rep.Failed())

	_, err = os.Stat(filepath.Join(dir, "image-0-sprite-0.gif"))
	assert.NoError(t, err)
}

func TestExtractIsolatesMalformedEntry(t *testing.T) {
	dir := t.TempDir()

	data := testBank(t)
	// Corrupt the second entry's declared length; the first must still
	// produce output.
	binary.LittleEndian.PutUint32(data[8+36:], 100000)

	s := New(nil, discardLogger())
	rep, err := s.Extract(data, ExtractOptions{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed())

	_, err = os.Stat(filepath.Join(dir, "image-0-0.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "image-1-0.png"))
	assert.True(t, os.IsNotExist(err))

	records := rep.Records()
	require.NotEmpty(t, records)
	for _, rec := range records {
		if rec.Entry == 1 {
			assert.Error(t, rec.Err)
		}
	}
}

func TestExtractMalformedTable(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data, 100)

	s := New(nil, discardLogger())
	_, err := s.Extract(data, ExtractOptions{OutputDir: t.TempDir()})
	require.Error(t, err)
}

func TestExtractWithCatalog(t *testing.T) {
	dir := t.TempDir()

	db, err := NewCatalogDB(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	data := testBank(t)
	s := New(db, discardLogger())
	rep, err := s.Extract(data, ExtractOptions{
		OutputDir: dir,
		Name:      "fixture.bin",
	})
	require.NoError(t, err)
	assert.Zero(t, rep.Failed())

	// Both entries have identical payloads, so one checksum finds them.
	name, idx, err := db.FindEntryByCRC(checksum(data[8 : 8+36]))
	require.NoError(t, err)
	assert.Equal(t, "fixture.bin", name)
	assert.Equal(t, 0, idx)

	name, _, err = db.FindEntryByCRC("0000000000000000")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestCatalogBankUpsert(t *testing.T) {
	db, err := NewCatalogDB(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	id1, err := db.AddBank("first.bin", "AAAA0000")
	require.NoError(t, err)
	id2, err := db.AddBank("renamed.bin", "AAAA0000")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := db.AddBank("other.bin", "BBBB0000")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestChecksum(t *testing.T) {
	// CRC-32 of "123456789" is the classic check value.
	assert.Equal(t, "CBF43926", checksum([]byte("123456789")))
}
