package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/howeyc/fsnotify"
	"github.com/rivo/tview"

	"github.com/mathiasmagnusson/methix/kernel/driver/tty"
	"github.com/mathiasmagnusson/methix/kernel/driver/video/console"
)

// screenView is a tview primitive that draws a text buffer using the
// colors of the default VGA palette.
type screenView struct {
	*tview.Box

	mu  sync.Mutex
	buf *console.TextBuffer
}

func newScreenView() *screenView {
	v := &screenView{Box: tview.NewBox()}
	v.SetBorder(true).SetTitle(" VGA text buffer ")
	return v
}

func (v *screenView) SetBuffer(buf *console.TextBuffer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.buf = buf
}

// Draw implements tview.Primitive.
func (v *screenView) Draw(screen tcell.Screen) {
	v.Box.DrawForSubclass(screen, v)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.buf == nil {
		return
	}

	x0, y0, width, height := v.GetInnerRect()
	for y := 0; y < console.Height && y < height; y++ {
		for x := 0; x < console.Width && x < width; x++ {
			cell := v.buf.Cell(uint16(x), uint16(y))
			screen.SetContent(x0+x, y0+y, glyphRune(cell.Glyph), nil, cellStyle(cell.Attr))
		}
	}
}

// tcellColor returns the terminal color matching the VGA palette entry c.
func tcellColor(c console.Color) tcell.Color {
	r, g, b, _ := console.Palette[c].RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

func cellStyle(attr console.Attr) tcell.Style {
	return tcell.StyleDefault.
		Foreground(tcellColor(attr.Foreground())).
		Background(tcellColor(attr.Background()))
}

// viewOptions selects the screen source of the interactive viewer.
type viewOptions struct {
	// path of a screen dump or byte stream; ignored if serialDevice is set.
	path       string
	replayMode bool
	watch      bool

	// serialDevice, if set, is followed live instead of loading path.
	serialDevice string
	baudRate     uint
}

// runViewer displays the selected screen until the user quits.
func runViewer(opts viewOptions) error {
	var (
		view   = newScreenView()
		status = tview.NewTextView().SetMaxLines(100)
		rows   = tview.NewFlex().SetDirection(tview.FlexRow)
		app    = tview.NewApplication()
	)

	status.SetChangedFunc(func() { app.Draw() })
	status.SetBackgroundColor(tcell.ColorDarkBlue)
	rows.
		AddItem(view, console.Height+2, 0, false).
		AddItem(status, 0, 1, false)
	app.SetRoot(rows, true)
	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return ev
	})

	log.SetPrefix("")
	log.SetOutput(status)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix("[vgaview] ")
	}()

	if opts.serialDevice != "" {
		port, err := openSerial(opts.serialDevice, opts.baudRate)
		if err != nil {
			return fmt.Errorf("opening %s: %w", opts.serialDevice, err)
		}
		defer port.Close()

		buf := replay(nil)
		view.SetBuffer(buf)
		go func() {
			log.Printf("following %s at %d baud", opts.serialDevice, opts.baudRate)
			err := view.follow(port, tty.NewWriter(buf), func() { app.Draw() })
			log.Printf("serial: %v", err)
		}()

		return app.Run()
	}

	reload := func() {
		buf, err := loadScreen(opts.path, opts.replayMode)
		if err != nil {
			log.Printf("load: %v", err)
			return
		}
		app.QueueUpdateDraw(func() { view.SetBuffer(buf) })
		log.Printf("loaded %s", opts.path)
	}

	if opts.watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Watch(filepath.Dir(opts.path)); err != nil {
			return err
		}

		go func() {
			var run <-chan time.Time
			for {
				select {
				case <-run:
					reload()
				case ev, ok := <-watcher.Event:
					if !ok {
						return
					}
					if filepath.Clean(ev.Name) == opts.path && !ev.IsAttrib() && !ev.IsDelete() {
						// coalesce the burst of events emitted while the dump is written
						run = time.After(100 * time.Millisecond)
					}
				case err, ok := <-watcher.Error:
					if !ok {
						return
					}
					log.Printf("watcher: %v", err)
				}
			}
		}()
	}

	go reload()
	return app.Run()
}
