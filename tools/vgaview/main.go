// Command vgaview inspects VGA text mode screens produced by a running
// kernel. The input is either a raw dump of the 80x25 text buffer (for
// example one produced by the QEMU monitor command
// "pmemsave 0xb8000 4000 screen.bin"), a byte stream that is written to a
// blank terminal (-replay) or the kernel's serial output followed live
// (-serial).
package main

import (
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

func main() {
	log.SetPrefix("[vgaview] ")
	log.SetFlags(0)

	var (
		textFlag   = flag.Bool("text", false, "print the screen contents to stdout and exit")
		colorFlag  = flag.Bool("color", false, "colorize -text output with ANSI escapes")
		pngFlag    = flag.String("png", "", "render the screen to a PNG `file` and exit")
		watchFlag  = flag.Bool("watch", false, "reload the screen whenever the input file changes")
		replayFlag = flag.Bool("replay", false, "treat the input as a byte stream written to a blank terminal")
		serialFlag = flag.String("serial", "", "follow the kernel serial log on `device` (e.g. /dev/pts/3)")
		baudFlag   = flag.Uint("baud", defaultBaudRate, "serial line speed")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-replay] [-watch] <screen.bin>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-replay] <-text [-color] | -png file> <screen.bin>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -serial device [-baud rate]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	if *serialFlag != "" {
		if flag.NArg() != 0 {
			flag.Usage()
		}
		if err := runViewer(viewOptions{serialDevice: *serialFlag, baudRate: *baudFlag}); err != nil {
			exit(err)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
	}

	path := filepath.Clean(flag.Arg(0))
	if !*textFlag && *pngFlag == "" {
		if err := runViewer(viewOptions{path: path, replayMode: *replayFlag, watch: *watchFlag}); err != nil {
			exit(err)
		}
		return
	}

	buf, err := loadScreen(path, *replayFlag)
	if err != nil {
		exit(err)
	}

	if *textFlag {
		render := renderText
		if *colorFlag {
			render = renderANSI
		}

		if err = render(os.Stdout, buf); err != nil {
			exit(err)
		}
	}

	if *pngFlag != "" {
		if err = writePNG(*pngFlag, buf); err != nil {
			exit(err)
		}
	}
}
