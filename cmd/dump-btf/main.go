// dump-btf is a CLI tool for dumping every decoded type record in a BTF blob.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alessandrogario/btfparse/pkg/btf"
)

func main() {
	verbose := flag.Bool("v", false, "Raise logging verbosity")
	jsonOut := flag.Bool("json", false, "Emit a JSON array of records instead of the stable text dump")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <btf-file>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s /sys/kernel/btf/vmlinux\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -json -v vmlinux.btf\n", os.Args[0])
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	log := logrus.WithField("request_id", uuid.NewString())
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	path := flag.Arg(0)
	start := time.Now()

	ix, err := btf.OpenFile(path)
	if err != nil {
		log.WithError(err).Error("decode failed")
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"records": ix.Len(),
		"elapsed": time.Since(start),
	}).Debug("decode complete")

	if *jsonOut {
		dumpJSON(ix)
		return
	}
	dumpText(ix)
}

func dumpText(ix *btf.Index) {
	ix.All(func(id btf.TypeID, rec btf.Record) bool {
		name := rec.TypeName()
		if name == "" {
			name = "<anon>"
		}
		fmt.Printf("%d: %s %s\n", id, rec.Kind(), name)
		return true
	})
}

func dumpJSON(ix *btf.Index) {
	type entry struct {
		ID     btf.TypeID `json:"id"`
		Kind   string     `json:"kind"`
		Name   string     `json:"name"`
		Record btf.Record `json:"record"`
	}

	entries := make([]entry, 0, ix.Len())
	ix.All(func(id btf.TypeID, rec btf.Record) bool {
		entries = append(entries, entry{ID: id, Kind: rec.Kind().String(), Name: rec.TypeName(), Record: rec})
		return true
	})

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
