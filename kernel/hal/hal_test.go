package hal

import (
	"bytes"
	"runtime"
	"sync"
	"testing"

	"github.com/mathiasmagnusson/methix/kernel/driver/tty"
	"github.com/mathiasmagnusson/methix/kernel/driver/video/console"
	"github.com/mathiasmagnusson/methix/kernel/hal/multiboot"
	ksync "github.com/mathiasmagnusson/methix/kernel/sync"
)

func resetTerminal() {
	terminalReady = false
	terminal = tty.Writer{}
	mapTextBufferFn = console.MapTextBuffer
	moveCursorFn = console.MoveCursor
	getFramebufferInfoFn = multiboot.GetFramebufferInfo
}

func TestLockTerminalLazyInit(t *testing.T) {
	defer resetTerminal()

	specs := []struct {
		fbInfo  *multiboot.FramebufferInfo
		expAddr uintptr
	}{
		{nil, console.PhysAddr},
		{
			&multiboot.FramebufferInfo{PhysAddr: 0xb8000, Width: 80, Height: 25, Type: multiboot.FramebufferTypeEGA},
			0xb8000,
		},
		{
			&multiboot.FramebufferInfo{PhysAddr: 0xa0000, Width: 80, Height: 25, Type: multiboot.FramebufferTypeEGA},
			0xa0000,
		},
		// unsupported framebuffers fall back to the standard address
		{
			&multiboot.FramebufferInfo{PhysAddr: 0xfd000000, Width: 1024, Height: 768, Bpp: 32, Type: multiboot.FramebufferTypeRGB},
			console.PhysAddr,
		},
		{
			&multiboot.FramebufferInfo{PhysAddr: 0xa0000, Width: 80, Height: 50, Type: multiboot.FramebufferTypeEGA},
			console.PhysAddr,
		},
	}

	for specIndex, spec := range specs {
		resetTerminal()

		var (
			buf       console.TextBuffer
			mapCalls  int
			mappedAt  uintptr
			cursorPos [2]uint16
		)

		fbInfo := spec.fbInfo
		getFramebufferInfoFn = func() *multiboot.FramebufferInfo { return fbInfo }
		mapTextBufferFn = func(addr uintptr) *console.TextBuffer {
			mapCalls++
			mappedAt = addr
			return &buf
		}
		moveCursorFn = func(x, y uint16) { cursorPos = [2]uint16{x, y} }

		for i := 0; i < 2; i++ {
			w := LockTerminal()
			w.Write([]byte("hi"))
			UnlockTerminal()
		}

		if mapCalls != 1 {
			t.Errorf("[spec %d] expected text buffer to be mapped exactly once; got %d", specIndex, mapCalls)
		}
		if mappedAt != spec.expAddr {
			t.Errorf("[spec %d] expected text buffer to be mapped at 0x%x; got 0x%x", specIndex, spec.expAddr, mappedAt)
		}
		if got := buf.Cell(3, 0).Glyph; got != 'i' {
			t.Errorf("[spec %d] expected terminal output to reach the mapped buffer; got %q", specIndex, got)
		}
		if cursorPos != [2]uint16{4, 0} {
			t.Errorf("[spec %d] expected hardware cursor to be moved to (4, 0); got %v", specIndex, cursorPos)
		}
	}
}

func TestCursorSyncedOncePerMessage(t *testing.T) {
	defer resetTerminal()

	var (
		buf       console.TextBuffer
		calls     int
		cursorPos [2]uint16
	)
	AttachTerminal(&buf, func(x, y uint16) {
		calls++
		cursorPos = [2]uint16{x, y}
	})

	w := LockTerminal()
	msg := "a message written byte by byte\n"
	for i := 0; i < len(msg); i++ {
		w.WriteByte(msg[i])
	}
	if calls != 0 {
		t.Fatalf("expected the hardware cursor not to move while the terminal is locked; got %d moves", calls)
	}
	UnlockTerminal()

	if calls != 1 {
		t.Fatalf("expected the hardware cursor to be moved once per message; got %d moves", calls)
	}
	if cursorPos != [2]uint16{0, 1} {
		t.Fatalf("expected hardware cursor to be moved to (0, 1); got %v", cursorPos)
	}
}

func TestSetTerminalAttr(t *testing.T) {
	defer resetTerminal()

	var buf console.TextBuffer
	AttachTerminal(&buf, nil)

	attr := console.MakeAttr(console.Yellow, console.Black)
	SetTerminalAttr(attr)

	w := LockTerminal()
	w.Write([]byte("x"))
	UnlockTerminal()

	if got := buf.Cell(0, 0); got != (console.ScreenCell{Glyph: 'x', Attr: attr}) {
		t.Fatalf("expected cell to be written with attribute 0x%x; got %+v", attr, got)
	}
}

func TestTryLockTerminal(t *testing.T) {
	defer resetTerminal()

	var buf console.TextBuffer
	AttachTerminal(&buf, nil)

	w, locked := TryLockTerminal()
	if !locked {
		t.Fatal("expected TryLockTerminal to acquire a free lock")
	}

	w2, locked2 := TryLockTerminal()
	if locked2 {
		t.Fatal("expected TryLockTerminal to fail while the lock is held")
	}
	if w2 != w {
		t.Fatal("expected TryLockTerminal to return the active terminal even if the lock is held")
	}

	UnlockTerminal()
}

func TestTerminalMessagesAreNotInterleaved(t *testing.T) {
	defer resetTerminal()
	defer ksync.SetYieldFunc(ksync.SetYieldFunc(runtime.Gosched))

	var buf console.TextBuffer
	AttachTerminal(&buf, nil)

	var (
		wg         sync.WaitGroup
		numWorkers = 4
		msgs       = []string{"aaaaaaaaaaaaaaaaaaa\n", "bbbbbbbbbbbbbbbbbbb\n", "ccccccccccccccccccc\n", "ddddddddddddddddddd\n"}
	)

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func(msg string) {
			defer wg.Done()
			w := LockTerminal()
			for j := 0; j < len(msg); j++ {
				w.WriteByte(msg[j])
				runtime.Gosched()
			}
			UnlockTerminal()
		}(msgs[i])
	}
	wg.Wait()

	for y := uint16(0); y < uint16(numWorkers); y++ {
		first := buf.Cell(0, y).Glyph
		for x := uint16(1); x < 19; x++ {
			if got := buf.Cell(x, y).Glyph; got != first {
				t.Fatalf("expected row %d to contain a single message; found %q after %q", y, got, first)
			}
		}
	}
}

func TestSerial(t *testing.T) {
	defer SetSerialSink(nil)

	if w := LockSerial(); w != nil {
		t.Fatalf("expected serial output to be disabled by default; got %v", w)
	}
	UnlockSerial()

	var out bytes.Buffer
	SetSerialSink(&out)

	w := LockSerial()
	w.Write([]byte("serial"))

	if _, locked := TryLockSerial(); locked {
		t.Fatal("expected TryLockSerial to fail while the lock is held")
	}
	UnlockSerial()

	sink, locked := TryLockSerial()
	if !locked || sink == nil {
		t.Fatal("expected TryLockSerial to acquire the lock and return the sink")
	}
	UnlockSerial()

	if got := out.String(); got != "serial" {
		t.Fatalf("expected serial sink to receive %q; got %q", "serial", got)
	}
}
