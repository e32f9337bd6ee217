// get-type-offset is a CLI tool for printing the bit/byte offset of a dotted
// field path rooted at a named type in a BTF blob.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alessandrogario/btfparse/pkg/btf"
)

func main() {
	verbose := flag.Bool("v", false, "Raise logging verbosity")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <btf-file> <type-name> <field-path>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s vmlinux.btf task_struct pid\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s vmlinux.btf dentry d_name.len\n", os.Args[0])
	}

	flag.Parse()

	if flag.NArg() < 3 {
		flag.Usage()
		os.Exit(1)
	}

	log := logrus.WithField("request_id", uuid.NewString())
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	path, typeName, fieldPath := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	ix, err := btf.OpenFile(path)
	if err != nil {
		log.WithError(err).Error("decode failed")
		os.Exit(1)
	}

	id, err := ix.IDOf(typeName)
	if err != nil {
		log.WithError(err).WithField("type", typeName).Error("type lookup failed")
		os.Exit(1)
	}

	fo, err := ix.OffsetOf(id, fieldPath)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"type": typeName, "path": fieldPath}).Error("offset resolution failed")
		os.Exit(1)
	}

	if byteOff, ok := fo.ByteOffset(); ok && fo.BitWidth == nil {
		fmt.Printf("%s => %s: (%d, ByteOffset(%d))\n", typeName, fieldPath, id, byteOff)
		return
	}

	width := uint8(0)
	if fo.BitWidth != nil {
		width = *fo.BitWidth
	}
	fmt.Printf("%s => %s: (%d, BitOffset(%d, width=%d))\n", typeName, fieldPath, id, fo.BitOffset, width)
}
