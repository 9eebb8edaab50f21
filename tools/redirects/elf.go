package main

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const redirectTableSection = ".goredirectstbl"

func elfRedirectTableOffset(imgFile string) (uint64, uint64, error) {
	f, err := elf.Open(imgFile)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	redirectsSection := f.Section(redirectTableSection)
	if redirectsSection == nil {
		return 0, 0, fmt.Errorf("%s: missing %s section", imgFile, redirectTableSection)
	}

	return redirectsSection.Offset, redirectsSection.Size, nil
}

// elfWriteRedirectTable writes a (srcVMA, dstVMA) pair for each redirect to
// the redirect table section of imgFile.
func elfWriteRedirectTable(redirects []*redirect, imgFile string) error {
	tableOffset, tableSize, err := elfRedirectTableOffset(imgFile)
	if err != nil {
		return err
	}

	if need := uint64(len(redirects)) * 16; need > tableSize {
		return fmt.Errorf("%s: %s section too small; need %d bytes, got %d", imgFile, redirectTableSection, need, tableSize)
	}

	// Open kernel image file and seek to table offset
	f, err := os.OpenFile(imgFile, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = f.Seek(int64(tableOffset), io.SeekStart); err != nil {
		return err
	}

	for _, r := range redirects {
		if err = binary.Write(f, binary.LittleEndian, [2]uint64{r.srcVMA, r.dstVMA}); err != nil {
			return fmt.Errorf("%s: writing redirect table: %w", imgFile, err)
		}
	}

	return nil
}

// elfResolveRedirectSymbols looks up the virtual addresses of the source and
// destination symbols of each redirect.
func elfResolveRedirectSymbols(redirects []*redirect, imgFile string) error {
	f, err := elf.Open(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	symbols, err := f.Symbols()
	if err != nil {
		return err
	}

	addrs := make(map[string]uint64, len(symbols))
	for _, symbol := range symbols {
		addrs[symbol.Name] = symbol.Value
	}

	for _, r := range redirects {
		r.srcVMA, r.dstVMA = addrs[r.src], addrs[r.dst]

		switch {
		case r.srcVMA == 0:
			return fmt.Errorf("%s: could not locate address of %q", imgFile, r.src)
		case r.dstVMA == 0:
			return fmt.Errorf("%s: could not locate address of %q", imgFile, r.dst)
		}
	}

	return nil
}
