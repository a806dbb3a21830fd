package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sleuthgo/tsk"
	"github.com/sleuthgo/tsk/driver"
	"github.com/sleuthgo/tsk/fs/iso9660"
	"github.com/sleuthgo/tsk/ifind"
	"github.com/sleuthgo/tsk/image"
	"github.com/sleuthgo/tsk/vs"
)

var (
	imageFlag = &cli.StringFlag{
		Name:     "image",
		Aliases:  []string{"i"},
		Usage:    "path to the disk image",
		Required: true,
	}
	offsetFlag = &cli.Int64Flag{
		Name:  "offset",
		Usage: "byte offset of the volume system within the image",
	}
	vsTypeFlag = &cli.StringFlag{
		Name:  "vstype",
		Usage: "volume system type: detect, dos, bsd, gpt, sun, mac, none",
		Value: "detect",
	}
	compressedFlag = &cli.BoolFlag{
		Name:  "compressed",
		Usage: "the image is gzip+RLE8-compressed (as produced by tsk/compress.CompressImage)",
	}
)

func main() {
	app := &cli.App{
		Usage: "Inspect disk images the way The Sleuth Tool Kit's fls/istat/ifind do",
		Commands: []*cli.Command{
			{
				Name:      "fls",
				Usage:     "list a directory's entries",
				ArgsUsage: "PATH",
				Flags:     []cli.Flag{imageFlag, offsetFlag, vsTypeFlag, compressedFlag},
				Action:    runFls,
			},
			{
				Name:      "istat",
				Usage:     "display a metadata entry's details",
				ArgsUsage: "PATH",
				Flags:     []cli.Flag{imageFlag, offsetFlag, vsTypeFlag, compressedFlag},
				Action:    runIstat,
			},
			{
				Name:      "ifind",
				Usage:     "find the metadata entry owning a block, or the children orphaned under a parent",
				ArgsUsage: "",
				Flags: []cli.Flag{
					imageFlag, offsetFlag, vsTypeFlag, compressedFlag,
					&cli.Int64Flag{Name: "block", Usage: "block address to look up"},
					&cli.Int64Flag{Name: "parent", Usage: "metadata address whose orphaned children to find"},
				},
				Action: runIfind,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

// openSession opens the image named by the "image" flag, optionally
// detects/opens a volume system per "vstype", and opens the ISO9660
// filesystem found either at "offset" or at the start of the first
// partition the volume system flags as allocated.
func openSession(c *cli.Context) (*driver.Session, error) {
	var img image.Image
	if c.Bool("compressed") {
		memImg, err := image.OpenCompressed(c.String("image"))
		if err != nil {
			return nil, err
		}
		img = memImg
	} else {
		f, err := os.Open(c.String("image"))
		if err != nil {
			return nil, err
		}
		img, err = wrapFile(f)
		if err != nil {
			return nil, err
		}
	}

	fsOffset := c.Int64("offset")
	var volumeSystem *vs.VolumeSystem

	if c.String("vstype") != "none" {
		vsType, err := parseVSType(c.String("vstype"))
		if err != nil {
			return nil, err
		}
		volumeSystem, err = vs.Open(img, c.Int64("offset"), vsType)
		if err != nil {
			return nil, err
		}
		fsOffset = findFirstAllocatedPartitionOffset(volumeSystem)
	}

	fsDriver, err := iso9660.Open(offsetImage{base: img, offset: fsOffset})
	if err != nil {
		return nil, err
	}

	return driver.New(img, volumeSystem, fsDriver)
}

func parseVSType(name string) (vs.Type, error) {
	switch name {
	case "detect":
		return vs.Detect, nil
	case "dos":
		return vs.DOS, nil
	case "bsd":
		return vs.BSD, nil
	case "gpt":
		return vs.GPT, nil
	case "sun":
		return vs.Sun, nil
	case "mac":
		return vs.Mac, nil
	default:
		return vs.Unsupported, fmt.Errorf("unrecognized volume system type %q", name)
	}
}

func findFirstAllocatedPartitionOffset(volumeSystem *vs.VolumeSystem) int64 {
	for _, p := range volumeSystem.Partitions {
		if p.Flags&vs.PartitionFlagAlloc != 0 {
			return volumeSystem.Offset + p.StartBlock*volumeSystem.BlockSize
		}
	}
	return volumeSystem.Offset
}

func runFls(c *cli.Context) error {
	sess, err := openSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()

	path := c.Args().First()
	if path == "" {
		path = "/"
	}

	dir, err := sess.ReadDir(path)
	if err != nil {
		return err
	}

	for _, entry := range dir.Entries {
		fmt.Printf("%s\t%d\t%s\n", entry.Type, entry.Addr, entry.Name)
	}
	return nil
}

func runIstat(c *cli.Context) error {
	sess, err := openSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("istat requires a PATH argument")
	}

	file, err := sess.Stat(path)
	if err != nil {
		return err
	}

	fmt.Printf("Address:\t%d\n", file.Meta.Addr)
	fmt.Printf("Type:\t\t%s\n", file.Meta.Type)
	fmt.Printf("Allocation:\t%s\n", file.Meta.Alloc)
	fmt.Printf("Size:\t\t%d\n", file.Meta.Size)

	return sess.FS.FileWalk(file, 0, func(f *tsk.File, fileOffset int64, diskAddr tsk.BlockAddr, buf []byte, size int64, flags tsk.BlockFlag) (tsk.WalkControl, error) {
		fmt.Printf("%d\n", diskAddr)
		return tsk.WalkContinue, nil
	})
}

func runIfind(c *cli.Context) error {
	sess, err := openSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()

	if c.IsSet("parent") {
		matches, err := sess.FindByParent(tsk.MetaAddr(c.Int64("parent")), ifind.FlagParLong)
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Printf("%d\t%s\n", m.Addr, m.Name)
		}
		return nil
	}

	if c.IsSet("block") {
		result, err := sess.FindByBlock(tsk.BlockAddr(c.Int64("block")), ifind.FlagAll)
		if err != nil {
			return err
		}
		if len(result.Matches) == 0 {
			if result.FallbackMeta {
				fmt.Println("block belongs to filesystem metadata")
			} else {
				fmt.Println("block is unallocated")
			}
			return nil
		}
		for _, m := range result.Matches {
			fmt.Printf("%d\n", m.Addr)
		}
		return nil
	}

	return fmt.Errorf("ifind requires either --block or --parent")
}

// fileImage adapts an *os.File to image.Image. Forensic images are read at
// whatever endianness their own descriptors declare (the ISO9660 Primary
// Volume Descriptor and the DOS/GPT/BSD/Sun/Mac volume-system headers each
// read their own multi-byte fields directly), so the image's own
// Endian() is advisory only and little-endian by convention here.
type fileImage struct {
	f    *os.File
	size int64
}

func wrapFile(f *os.File) (*fileImage, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &fileImage{f: f, size: info.Size()}, nil
}

func (fi *fileImage) ReadAt(buf []byte, offset int64) (int, error) {
	return fi.f.ReadAt(buf, offset)
}
func (fi *fileImage) Size() int64             { return fi.size }
func (fi *fileImage) Endian() image.Endianness { return image.LittleEndian }

// offsetImage presents the region of base starting at offset as its own
// zero-based image.Image, the way tsk/vs's detected partition start is
// translated into a standalone filesystem image for iso9660.Open.
type offsetImage struct {
	base   image.Image
	offset int64
}

func (o offsetImage) ReadAt(buf []byte, offset int64) (int, error) {
	return o.base.ReadAt(buf, o.offset+offset)
}
func (o offsetImage) Size() int64             { return o.base.Size() - o.offset }
func (o offsetImage) Endian() image.Endianness { return o.base.Endian() }
