/*
Package sprbank extracts images from proprietary sprite bank containers.

The format decoder itself lives in the bank subpackage; this package
drives it: it fans container entries out to a pool of workers, writes the
rasterized results as PNG or GIF files and optionally records what was
extracted in a sqlite catalog.
*/
package sprbank

import "log"

type SprBank struct {
	db     *CatalogDB
	logger *log.Logger
}

// New returns an extractor. db may be nil to run without a catalog.
func New(db *CatalogDB, logger *log.Logger) *SprBank {
	return &SprBank{
		db:     db,
		logger: logger,
	}
}
