package sprbank

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// CatalogDB is an optional sqlite database recording what has been
// extracted: one row per bank keyed by content checksum, one row per
// decoded entry. Re-running an extraction updates rows in place, so the
// catalog stays a current inventory rather than a log.
type CatalogDB struct {
	db *sql.DB
}

func NewCatalogDB(file string) (*CatalogDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS bank (id INTEGER PRIMARY KEY NOT NULL, name STRING NOT NULL, crc TEXT NOT NULL UNIQUE)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS entry (bank_id INTEGER NOT NULL, idx INTEGER NOT NULL, pixel_format TEXT NOT NULL, compression TEXT NOT NULL, sprites INTEGER NOT NULL, sprite_width INTEGER NOT NULL, sprite_height INTEGER NOT NULL, grid_width INTEGER NOT NULL, grid_height INTEGER NOT NULL, palettes INTEGER NOT NULL, crc TEXT NOT NULL, files INTEGER NOT NULL, PRIMARY KEY (bank_id, idx), FOREIGN KEY(bank_id) REFERENCES bank(id))"); err != nil {
		return nil, err
	}

	return &CatalogDB{
		db: db,
	}, nil
}

func (db *CatalogDB) Close() error {
	return db.db.Close()
}

// AddBank records a bank by its content checksum and returns its row id.
// A bank already present under the same checksum keeps its id and has its
// name refreshed.
func (db *CatalogDB) AddBank(name, crc string) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM bank WHERE crc = ?", crc).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO bank (name, crc) VALUES (?, ?)", name, crc)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		if _, err := db.db.Exec("UPDATE bank SET name = ? WHERE id = ?", name, id); err != nil {
			return 0, err
		}
		return id, nil
	default:
		return 0, err
	}
}

type entryRow struct {
	Index        int
	PixelFormat  string
	Compression  string
	Sprites      int
	SpriteWidth  int
	SpriteHeight int
	GridWidth    int
	GridHeight   int
	Palettes     int
	CRC          string
	Files        int
}

// AddEntry inserts or refreshes the catalog row for one container entry.
func (db *CatalogDB) AddEntry(bank int64, e entryRow) error {
	_, err := db.db.Exec(
		"INSERT OR REPLACE INTO entry (bank_id, idx, pixel_format, compression, sprites, sprite_width, sprite_height, grid_width, grid_height, palettes, crc, files) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		bank, e.Index, e.PixelFormat, e.Compression, e.Sprites, e.SpriteWidth, e.SpriteHeight,
		e.GridWidth, e.GridHeight, e.Palettes, e.CRC, e.Files)
	return err
}

// FindEntryByCRC looks an entry payload checksum up across all cataloged
// banks, returning the bank name and entry index of the first match or
// ("", -1) when unseen.
func (db *CatalogDB) FindEntryByCRC(crc string) (string, int, error) {
	var name string
	var idx int
	switch err := db.db.QueryRow("SELECT b.name, e.idx FROM entry AS e JOIN bank AS b ON e.bank_id = b.id WHERE e.crc = ? ORDER BY b.id, e.idx", crc).Scan(&name, &idx); err {
	case sql.ErrNoRows:
		return "", -1, nil
	case nil:
		return name, idx, nil
	default:
		return "", -1, err
	}
}
