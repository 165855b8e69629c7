package sprbank

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/bodgit/sprbank/bank"
	"github.com/bodgit/sprbank/report"
)

// ExportMode selects what each container entry is written out as.
type ExportMode int

const (
	// ExportSubimages writes one file per complete subimage, rendered
	// with the first palette: image-<entry>-<subimage>.<ext>.
	ExportSubimages ExportMode = iota
	// ExportSheet writes a single spritesheet per entry with one row
	// band per palette: image-<entry>.<ext>.
	ExportSheet
	// ExportSprites writes every raw sprite separately:
	// image-<entry>-sprite-<sprite>.<ext>.
	ExportSprites
)

// Output formats. GIF output is quantized when an image uses more than
// 256 colors.
const (
	FormatPNG = "png"
	FormatGIF = "gif"
)

const defaultWorkers = 4

// ExtractOptions control one Extract run.
type ExtractOptions struct {
	OutputDir string
	Mode      ExportMode
	Format    string // FormatPNG or FormatGIF, defaults to PNG
	Scale     int    // integer upscale factor, nearest neighbor
	Workers   int    // concurrent entry decoders, defaults to 4
	Name      string // label recorded in the catalog, typically the input path
}

func (o *ExtractOptions) format() string {
	if o.Format == "" {
		return FormatPNG
	}
	return o.Format
}

// Extract decodes every entry of the bank held in data and writes the
// results under opts.OutputDir. Entries are decoded concurrently; a
// malformed entry is recorded in the returned report and skipped while its
// siblings still produce output. The returned error is reserved for
// whole-run failures: an unreadable offset table, output I/O or the
// catalog.
func (s *SprBank) Extract(data []byte, opts ExtractOptions) (*report.Report, error) {
	b, err := bank.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("image count: %d\n", b.NumImages())

	bankID := int64(-1)
	if s.db != nil {
		if bankID, err = s.db.AddBank(opts.Name, checksum(data)); err != nil {
			return nil, errors.Wrap(err, "recording bank in catalog")
		}
	}

	rep := report.New()

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	entries, errc, err := s.generateEntries(ctx, b.NumImages())
	if err != nil {
		return rep, err
	}
	errcList = append(errcList, errc)

	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	for i := 0; i < workers; i++ {
		errc, err := s.entryWorker(ctx, b, bankID, opts, entries, rep)
		if err != nil {
			return rep, err
		}
		errcList = append(errcList, errc)
	}

	return rep, waitForPipeline(errcList...)
}

func (s *SprBank) generateEntries(ctx context.Context, n int) (<-chan int, <-chan error, error) {
	out := make(chan int)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for i := 0; i < n; i++ {
			select {
			case out <- i:
			case <-ctx.Done():
				errc <- errors.New("extraction cancelled")
				return
			}
		}
	}()
	return out, errc, nil
}

func (s *SprBank) entryWorker(ctx context.Context, b *bank.Bank, bankID int64, opts ExtractOptions, in <-chan int, rep *report.Report) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for i := range in {
			if err := s.extractEntry(b, bankID, i, opts, rep); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

// extractEntry decodes and writes one container entry. Decode failures are
// per-entry and go to the report; the returned error is for faults that
// should stop the run, such as the output directory disappearing.
func (s *SprBank) extractEntry(b *bank.Bank, bankID int64, i int, opts ExtractOptions, rep *report.Report) error {
	img, err := b.Image(i)
	if err != nil {
		rep.Fail(i, err)
		return nil
	}

	d := &img.Descriptor
	s.logger.Printf("entry %d: %s %s, %d %dx%d sprites, %dx%d grid, %d palettes\n",
		i, d.PixelFormat, d.Compression, d.NumSprites, d.SpriteWidth, d.SpriteHeight,
		d.GridWidth, d.GridHeight, d.NumPalettes)

	ext := opts.format()
	files := 0
	write := func(name string, m image.Image) error {
		path := filepath.Join(opts.OutputDir, name)
		if err := s.writeImage(path, m, opts); err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
		rep.AddFile(i, path)
		files++
		return nil
	}

	switch opts.Mode {
	case ExportSheet:
		m, err := img.Sheet()
		if err != nil {
			rep.Fail(i, err)
			break
		}
		if err := write(fmt.Sprintf("image-%d.%s", i, ext), m); err != nil {
			return err
		}
	case ExportSprites:
		for j := 0; j < img.NumSprites(); j++ {
			m, err := img.Sprite(j, 0)
			if err != nil {
				rep.Fail(i, err)
				break
			}
			if err := write(fmt.Sprintf("image-%d-sprite-%d.%s", i, j, ext), m); err != nil {
				return err
			}
		}
	default:
		for j := 0; j < img.NumSubimages(); j++ {
			m, err := img.Subimage(j, 0)
			if err != nil {
				rep.Fail(i, err)
				break
			}
			if err := write(fmt.Sprintf("image-%d-%d.%s", i, j, ext), m); err != nil {
				return err
			}
		}
	}

	for _, w := range img.Warnings() {
		rep.Warn(i, "%s", w)
	}

	if s.db != nil && bankID >= 0 {
		raw, err := b.EntryData(i)
		if err != nil {
			rep.Warn(i, "not cataloged: %v", err)
			return nil
		}
		if err := s.db.AddEntry(bankID, entryRow{
			Index:        i,
			PixelFormat:  d.PixelFormat.String(),
			Compression:  d.Compression.String(),
			Sprites:      d.NumSprites,
			SpriteWidth:  d.SpriteWidth,
			SpriteHeight: d.SpriteHeight,
			GridWidth:    d.GridWidth,
			GridHeight:   d.GridHeight,
			Palettes:     d.NumPalettes,
			CRC:          checksum(raw),
			Files:        files,
		}); err != nil {
			return errors.Wrapf(err, "cataloging entry %d", i)
		}
	}

	return nil
}

// writeImage encodes m to path, upscaling first if requested.
func (s *SprBank) writeImage(path string, m image.Image, opts ExtractOptions) error {
	if opts.Scale > 1 {
		b := m.Bounds()
		m = resize.Resize(uint(b.Dx()*opts.Scale), uint(b.Dy()*opts.Scale), m, resize.NearestNeighbor)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch opts.format() {
	case FormatGIF:
		return gif.Encode(f, m, &gif.Options{
			NumColors: 256,
			Quantizer: quantize.MedianCutQuantizer{},
		})
	default:
		return png.Encode(f, m)
	}
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
