// Command schematic summarizes schematic files and optionally lists their
// blocks.
//
//	schematic [-config file] [-anchor x,y,z] [-voxels] [-v] file...
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/calebcase/schematic"
	"github.com/calebcase/schematic/value"
)

var (
	configPath = flag.String("config", "", "decode configuration file (YAML)")
	anchorFlag = flag.String("anchor", "0,0,0", "world position of the schematic anchor")
	voxels     = flag.Bool("voxels", false, "list every present block")
	verbose    = flag.Bool("v", false, "log spill and skip decisions")
)

func exitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Parse()

	cfg := value.Config{}
	if *configPath != "" {
		var err error

		cfg, err = schematic.LoadConfig(*configPath)
		if err != nil {
			exitf("can't load config: %s", err)
		}
	}

	if *verbose {
		cfg.Logf = log.New(os.Stderr, "schematic: ", log.LstdFlags).Printf
	}

	var anchor schematic.Pos
	_, err := fmt.Sscanf(*anchorFlag, "%d,%d,%d", &anchor.X, &anchor.Y, &anchor.Z)
	if err != nil {
		exitf("bad anchor %q: %s", *anchorFlag, err)
	}

	o := bufio.NewWriter(os.Stdout)
	for _, arg := range flag.Args() {
		err := dump(o, arg, cfg, anchor)
		if err != nil {
			_ = o.Flush()
			exitf("input %s: %s", arg, err)
		}
	}

	if err := o.Flush(); err != nil {
		exitf("%s", err)
	}
}

func dump(o *bufio.Writer, path string, cfg value.Config, anchor schematic.Pos) (err error) {
	doc, err := schematic.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	defer func() {
		cerr := doc.Close()
		if err == nil {
			err = cerr
		}
	}()

	w, h, l := doc.Dimensions()

	sum, err := doc.Fingerprint()
	if err != nil {
		return err
	}

	present, err := doc.Presence()
	if err != nil {
		return err
	}

	fmt.Fprintf(o, "%s:\n", path)
	fmt.Fprintf(o, "  size: %dx%dx%d (%d blocks, %d present)\n", w, h, l, doc.Volume(), present.GetCardinality())
	fmt.Fprintf(o, "  materials: %s\n", doc.Materials())
	fmt.Fprintf(o, "  offset: %+v\n", doc.Offset())

	if origin, ok := doc.Origin(); ok {
		fmt.Fprintf(o, "  origin: %+v\n", origin)
	}

	if icon := doc.Icon(); icon != nil {
		fmt.Fprintf(o, "  icon: %s (id %d, damage %d)\n", icon.Name, icon.ID, icon.Damage)
	}

	if m := doc.Mapping(); m != nil {
		fmt.Fprintf(o, "  mapped items: %d\n", len(m.Entries()))
	}

	fmt.Fprintf(o, "  entities: %d\n", len(doc.Entities()))
	fmt.Fprintf(o, "  tile entities: %d\n", len(doc.TileEntities()))
	fmt.Fprintf(o, "  fingerprint: %016x\n", sum)

	if !*voxels {
		return nil
	}

	it, err := doc.Voxels(anchor)
	if err != nil {
		return err
	}
	defer func() {
		cerr := it.Close()
		if err == nil {
			err = cerr
		}
	}()

	for it.Next() {
		v := it.Voxel()
		fmt.Fprintf(o, "  %d %d %d: %d:%d\n", v.Pos.X, v.Pos.Y, v.Pos.Z, v.FullID(), v.Data)
	}

	return it.Err()
}
