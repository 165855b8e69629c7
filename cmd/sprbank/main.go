package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bodgit/sprbank"
	"github.com/bodgit/sprbank/bank"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openCatalog(c *cli.Context) (*sprbank.CatalogDB, error) {
	if c.String("db") == "" {
		return nil, nil
	}
	return sprbank.NewCatalogDB(c.String("db"))
}

func readBank(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ioutil.ReadAll(f)
}

func main() {
	app := cli.NewApp()

	app.Name = "sprbank"
	app.Usage = "Sprite bank asset extraction utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SPRBANK_DB"},
			Usage:   "path to extraction catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "extract",
			Usage:       "Extract all images from a sprite bank",
			Description: "Decodes every container entry and writes one image per subimage, or per spritesheet with --sheet, into DIRECTORY.",
			ArgsUsage:   "FILE DIRECTORY",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "sheet",
					Usage: "compose one spritesheet per entry, palettes as rows",
				},
				&cli.BoolFlag{
					Name:  "sprites",
					Usage: "write every sprite as its own file",
				},
				&cli.StringFlag{
					Name:  "format",
					Value: sprbank.FormatPNG,
					Usage: "output format, png or gif",
				},
				&cli.IntFlag{
					Name:  "scale",
					Value: 1,
					Usage: "integer upscale factor",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "concurrent entry decoders",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				data, err := readBank(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				db, err := openCatalog(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if db != nil {
					defer db.Close()
				}

				mode := sprbank.ExportSubimages
				switch {
				case c.Bool("sheet"):
					mode = sprbank.ExportSheet
				case c.Bool("sprites"):
					mode = sprbank.ExportSprites
				}

				s := sprbank.New(db, newLogger(c))
				rep, err := s.Extract(data, sprbank.ExtractOptions{
					OutputDir: c.Args().Get(1),
					Mode:      mode,
					Format:    c.String("format"),
					Scale:     c.Int("scale"),
					Workers:   c.Int("workers"),
					Name:      c.Args().First(),
				})
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				rep.Log(log.New(os.Stderr, "", 0))
				if failed := rep.Failed(); failed > 0 {
					return cli.NewExitError(fmt.Sprintf("%d entries could not be decoded", failed), 1)
				}

				return nil
			},
		},
		{
			Name:        "info",
			Usage:       "Summarize the entries of a sprite bank",
			Description: "Parses the offset table and every descriptor without writing any images.",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				data, err := readBank(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b, err := bank.DecodeBytes(data)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("%d entries\n", b.NumImages())
				for i := 0; i < b.NumImages(); i++ {
					img, err := b.Image(i)
					if err != nil {
						fmt.Printf("%4d  %v\n", i, err)
						continue
					}
					d := img.Descriptor
					subimages, _ := d.NumSubimages()
					fmt.Printf("%4d  %-9s %-8s %5d sprites of %dx%d, %dx%d grid, %d subimages, %d palettes",
						i, d.PixelFormat, d.Compression, d.NumSprites,
						d.SpriteWidth, d.SpriteHeight, d.GridWidth, d.GridHeight,
						subimages, d.NumPalettes)
					if d.Obfuscated {
						fmt.Printf(" obfuscated")
					}
					if d.Transparency {
						fmt.Printf(" transparent@%d", d.TransparentIndex)
					}
					fmt.Printf("\n")
					for _, w := range img.Warnings() {
						fmt.Printf("      warning: %s\n", w)
					}
				}

				return nil
			},
		},
		{
			Name:        "preview",
			Usage:       "Render an entry's spritesheet in the terminal",
			Description: "Composes the spritesheet for one entry and draws it inline using Kitty, iTerm2 or Sixel escapes.",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "entry",
					Value: 0,
					Usage: "container entry to render",
				},
				&cli.IntFlag{
					Name:  "scale",
					Value: 1,
					Usage: "integer upscale factor",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				data, err := readBank(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b, err := bank.DecodeBytes(data)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				img, err := b.Image(c.Int("entry"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, err := img.Sheet()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := preview(m, c.Int("scale")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
