// Command redirects patches the .goredirectstbl section of a kernel image
// with the addresses of the functions annotated with go:redirect-from so
// that the rt0 code can redirect runtime calls (e.g. runtime.gopanic) to
// their kernel replacements.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

func exit(err error) {
	log.Printf("error: %s", err.Error())
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] count|list|populate-table kernel-image\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("[redirects] ")

	root := flag.String("root", ".", "path to the module root containing go.mod and kernel/")
	flag.Usage = usage
	flag.Parse()

	if matches, _ := filepath.Glob(filepath.Join(*root, "kernel")); len(matches) != 1 {
		exit(errors.New("this tool must be run from the kernel root folder"))
	}

	if len(flag.Args()) == 0 {
		exit(errors.New("missing command"))
	}

	cmd := flag.Arg(0)
	var imgFile string
	switch cmd {
	case "count", "list":
	case "populate-table":
		if len(flag.Args()) != 2 {
			exit(errors.New("populate-table requires the path to the kernel image as an argument"))
		}
		imgFile = flag.Arg(1)
	default:
		exit(fmt.Errorf("unknown command %q", cmd))
	}

	redirects, err := scanRedirects(*root)
	if err != nil {
		exit(err)
	}

	switch cmd {
	case "count":
		fmt.Printf("%d", len(redirects))
		return
	case "list":
		for _, r := range redirects {
			fmt.Printf("%s -> %s\n", r.src, r.dst)
		}
		return
	}

	if err = elfResolveRedirectSymbols(redirects, imgFile); err != nil {
		exit(err)
	}

	if err = elfWriteRedirectTable(redirects, imgFile); err != nil {
		exit(err)
	}

	log.Printf("patched %d redirect(s) into %s", len(redirects), imgFile)
}
