// Command disklabel is a thin, flag-driven CLI over the disklabel library,
// grounded on the teacher's cmd/main.go urfave/cli wiring.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hubert-he/disklabel"
	"github.com/hubert-he/disklabel/bootstrap"
	"github.com/hubert-he/disklabel/display"
	"github.com/hubert-he/disklabel/lifecycle"
	"github.com/urfave/cli/v2"
)

// fileContext is a [disklabel.Context] backed by a real device/image file,
// opened for the lifetime of one CLI invocation.
type fileContext struct {
	device      *os.File
	devicePath  string
	sectorSize  uint32
	heads       uint32
	sectors     uint32
	cylinders   uint32
	platform    disklabel.Platform
	displayMode disklabel.DisplayMode
	labelSector int
	labelOffset int
	bbSize      uint32
	parent      disklabel.ParentPartition
}

func (c *fileContext) Device() io.ReadWriteSeeker          { return c.device }
func (c *fileContext) DevicePath() string                 { return c.devicePath }
func (c *fileContext) SectorSize() uint32                 { return c.sectorSize }
func (c *fileContext) Heads() uint32                      { return c.heads }
func (c *fileContext) Sectors() uint32                    { return c.sectors }
func (c *fileContext) Cylinders() uint32                  { return c.cylinders }
func (c *fileContext) Platform() disklabel.Platform       { return c.platform }
func (c *fileContext) DisplayMode() disklabel.DisplayMode { return c.displayMode }
func (c *fileContext) LabelSector() int                   { return c.labelSector }
func (c *fileContext) LabelOffset() int                   { return c.labelOffset }
func (c *fileContext) BBSize() uint32                     { return c.bbSize }
func (c *fileContext) Parent() (disklabel.ParentPartition, bool) {
	if c.parent == nil {
		return nil, false
	}
	return c.parent, true
}

func openContext(path string, heads, sectors, cylinders uint32, platform disklabel.Platform) (*fileContext, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, disklabel.ErrIOFailed.Wrap(err)
	}
	return &fileContext{
		device:      f,
		devicePath:  path,
		sectorSize:  disklabel.DefaultSectorSize,
		heads:       heads,
		sectors:     sectors,
		cylinders:   cylinders,
		platform:    platform,
		displayMode: disklabel.DisplayModeSectors,
		labelSector: disklabel.DefaultLabelSector,
		labelOffset: disklabel.DefaultLabelOffset,
		bbSize:      disklabel.DefaultBBSize,
	}, nil
}

// autoYesPrompts answers every yes/no prompt with yes and every number or
// string prompt with its default, for non-interactive CLI invocations.
// Partition-number prompts have no default and return ErrUserCancel.
type autoYesPrompts struct{}

func (autoYesPrompts) AskNumber(low, def, high int64, prompt string) (int64, error) {
	return def, nil
}
func (autoYesPrompts) AskYesNo(prompt string, def bool) (bool, error) { return true, nil }
func (autoYesPrompts) AskString(prompt, def string) (string, error)  { return def, nil }
func (autoYesPrompts) AskPartNum(prompt string) (int, error)         { return 0, disklabel.ErrUserCancel }

// stderrSink writes warn/info/success messages to stderr and stdout.
type stderrSink struct{}

func (stderrSink) Warn(devicePath, message string)    { fmt.Fprintf(os.Stderr, "%s: warning: %s\n", devicePath, message) }
func (stderrSink) Info(devicePath, message string)    { fmt.Fprintf(os.Stdout, "%s: %s\n", devicePath, message) }
func (stderrSink) Success(devicePath, message string) { fmt.Fprintf(os.Stdout, "%s: %s\n", devicePath, message) }

func main() {
	app := &cli.App{
		Name:  "disklabel",
		Usage: "Inspect and edit BSD disklabels",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "device", Required: true},
			&cli.UintFlag{Name: "heads", Value: 16},
			&cli.UintFlag{Name: "sectors", Value: 63},
			&cli.UintFlag{Name: "cylinders", Value: 1024},
		},
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Initialize a fresh disklabel",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "preset",
						Usage: "named geometry preset (overrides -heads/-sectors/-cylinders)",
					},
				},
				Action: func(ctxCli *cli.Context) error {
					return runCreate(ctxCli)
				},
			},
			{
				Name:  "list",
				Usage: "List the partitions in an existing disklabel",
				Action: func(ctxCli *cli.Context) error {
					return runList(ctxCli)
				},
			},
			{
				Name:  "install-bootstrap",
				Usage: "Install first/second-stage bootstrap code",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Required: true},
					&cli.StringFlag{Name: "basename"},
				},
				Action: func(ctxCli *cli.Context) error {
					return runInstallBootstrap(ctxCli)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func geometryFromFlags(ctxCli *cli.Context) (heads, sectors, cylinders uint32) {
	return uint32(ctxCli.Uint("heads")), uint32(ctxCli.Uint("sectors")), uint32(ctxCli.Uint("cylinders"))
}

func runCreate(ctxCli *cli.Context) error {
	heads, sectors, cylinders := geometryFromFlags(ctxCli)
	fc, err := openContext(ctxCli.String("device"), heads, sectors, cylinders, disklabel.PlatformGeneric)
	if err != nil {
		return err
	}
	defer fc.device.Close()

	label := lifecycle.New(fc, stderrSink{})

	var created bool
	if preset := ctxCli.String("preset"); preset != "" {
		created, err = label.CreatePreset(fc, autoYesPrompts{}, preset)
	} else {
		created, err = label.Create(fc, autoYesPrompts{})
	}
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	if err := label.Write(); err != nil {
		return err
	}
	stderrSink{}.Success(fc.devicePath, "disklabel created")
	return nil
}

func runList(ctxCli *cli.Context) error {
	heads, sectors, cylinders := geometryFromFlags(ctxCli)
	fc, err := openContext(ctxCli.String("device"), heads, sectors, cylinders, disklabel.PlatformGeneric)
	if err != nil {
		return err
	}
	defer fc.device.Close()

	label := lifecycle.New(fc, stderrSink{})
	found, err := label.Read(fc)
	if err != nil {
		return err
	}
	if !found {
		return disklabel.ErrNotFound.WithMessage("no disklabel found on " + fc.devicePath)
	}

	table := display.Table{Platform: fc.platform}
	fmt.Print(table.Render(label.List()))
	return nil
}

func runInstallBootstrap(ctxCli *cli.Context) error {
	heads, sectors, cylinders := geometryFromFlags(ctxCli)
	fc, err := openContext(ctxCli.String("device"), heads, sectors, cylinders, disklabel.PlatformGeneric)
	if err != nil {
		return err
	}
	defer fc.device.Close()

	baseName := ctxCli.String("basename")
	if baseName == "" {
		baseName = bootstrap.DefaultBaseName(disklabel.DiskType(0))
	}

	installer := &bootstrap.Installer{Dir: ctxCli.String("dir")}
	return installer.Install(fc, baseName)
}
