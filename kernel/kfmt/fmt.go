// Package kfmt provides allocation-free formatted output for the kernel.
package kfmt

import (
	"io"
	"unsafe"

	"github.com/mathiasmagnusson/methix/kernel"
	"github.com/mathiasmagnusson/methix/kernel/driver/video/console"
	"github.com/mathiasmagnusson/methix/kernel/hal"
)

const (
	// maxBufSize defines the buffer size for formatting numbers.
	maxBufSize = 32

	// maxPadLen caps the requested width to a full screen of output.
	maxPadLen = console.Width * console.Height
)

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errBadIndex     = []byte("%!(BADINDEX)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")
	nilValue        = []byte("<nil>")
)

// Printf writes a formatted message to the active terminal. The terminal
// lock is held while the entire message is rendered so output from
// concurrent callers is never interleaved.
//
// Similar to fmt.Printf, this version of printf supports the following subset
// of formatting verbs:
//
// Strings:
//
//	%s the uninterpreted bytes of the string or byte slice
//
// Integers:
//
//	%o base 8
//	%d base 10
//	%x base 16, with lower-case letters for a-f
//
// Booleans:
//
//	%t "true" or "false"
//
// Any supported type:
//
//	%v the value in a default format (%t, %d or %s); error values are
//	   printed using their message
//
// Width is specified by an optional decimal number immediately preceding the verb.
// If absent, the width is whatever is necessary to represent the value.
//
// String values with length less than the specified width will be left-padded with
// spaces. Integer values formatted as base-10 will also be left-padded with spaces.
// Finally, integer values formatted as base-8 or base-16 will be left-padded with zeroes.
//
// Like fmt.Printf, the notation [n] immediately before the verb selects the
// n-th (1-based) argument instead of the next one. Subsequent verbs continue
// with argument n+1:
//
//	Printf("Hello%[2]s World%[1]s", "!", ",") // Hello, World!
//
// Printf supports all built-in string and integer types but assumes that the
// Go itables have not been initialized yet so it will not check whether its
// arguments support io.Stringer if they don't match one of the supported types.
//
// This function does not provide support for printing pointers (%p) as this
// requires importing the reflect package. By importing reflect, the go compiler
// starts generating calls to runtime.convT2E (which calls runtime.newobject)
// when assembling the argument slice which obviously will crash the kernel since
// memory management is not yet available.
func Printf(format string, args ...interface{}) {
	w := hal.LockTerminal()
	Fprintf(w, format, args...)
	hal.UnlockTerminal()
}

// SerialPrintf behaves like Printf but writes the formatted output to the
// serial port. The output is discarded if the serial port has not been
// initialized.
func SerialPrintf(format string, args ...interface{}) {
	w := hal.LockSerial()
	Fprintf(w, format, args...)
	hal.UnlockSerial()
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer. Output sent to a nil io.Writer is discarded.
// Fprintf does not synchronize access to w.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		nextCh                       byte
		nextArgIndex                 int
		blockStart, blockEnd, padLen int
		badIndex, reordered, gotVerb bool
		fmtLen                       = len(format)
	)

	for blockEnd < fmtLen {
		nextCh = format[blockEnd]
		if nextCh != '%' {
			blockEnd++
			continue
		}

		// passing format[blockStart:blockEnd] to doWrite triggers a
		// memory allocation so we need to do this one byte at a time.
		for i := blockStart; i < blockEnd; i++ {
			writeByte(w, format[i])
		}

		// Scan til we hit the format character
		padLen = 0
		badIndex, gotVerb = false, false
		blockEnd++
	parseFmt:
		for ; blockEnd < fmtLen; blockEnd++ {
			nextCh = format[blockEnd]
			switch {
			case nextCh == '%':
				writeByte(w, '%')
				gotVerb = true
				break parseFmt
			case nextCh >= '0' && nextCh <= '9':
				padLen = (padLen * 10) + int(nextCh-'0')
				if padLen > maxPadLen {
					padLen = maxPadLen
				}
				continue
			case nextCh == '[':
				var argNum int
				argNum, blockEnd, badIndex = parseArgIndex(format, blockEnd+1, len(args))
				if !badIndex {
					nextArgIndex = argNum - 1
				}
				reordered = true
				continue
			case nextCh == 'd' || nextCh == 'x' || nextCh == 'o' || nextCh == 's' || nextCh == 't' || nextCh == 'v':
				gotVerb = true
				if badIndex {
					doWrite(w, errBadIndex)
					break parseFmt
				}

				// Run out of args to print
				if nextArgIndex >= len(args) {
					doWrite(w, errMissingArg)
					break parseFmt
				}

				switch nextCh {
				case 'o':
					fmtInt(w, args[nextArgIndex], 8, padLen)
				case 'd':
					fmtInt(w, args[nextArgIndex], 10, padLen)
				case 'x':
					fmtInt(w, args[nextArgIndex], 16, padLen)
				case 's':
					fmtString(w, args[nextArgIndex], padLen)
				case 't':
					fmtBool(w, args[nextArgIndex])
				case 'v':
					fmtValue(w, args[nextArgIndex], padLen)
				}

				nextArgIndex++
				break parseFmt
			}

			// unsupported verb; consume it
			gotVerb = true
			doWrite(w, errNoVerb)
			break
		}

		// reached end of formatting string without finding a verb
		if !gotVerb {
			doWrite(w, errNoVerb)
		}
		blockStart, blockEnd = blockEnd+1, blockEnd+1
	}

	// passing format[blockStart:blockEnd] to doWrite triggers a
	// memory allocation so we need to do this one byte at a time.
	for i := blockStart; i < blockEnd && i < fmtLen; i++ {
		writeByte(w, format[i])
	}

	// Check for unused args. Like fmt, explicit argument indexes disable
	// this check.
	if reordered {
		return
	}
	for ; nextArgIndex < len(args); nextArgIndex++ {
		doWrite(w, errExtraArg)
	}
}

// parseArgIndex parses the argument index that starts at format[start] and
// is terminated by a ']'. It returns the parsed 1-based index, the offset of
// the closing bracket (or of the last format character if the bracket is
// missing) and whether the index is malformed or out of range.
func parseArgIndex(format string, start, argCount int) (int, int, bool) {
	var (
		argNum int
		bad    bool
	)

	for i := start; i < len(format); i++ {
		switch ch := format[i]; {
		case ch == ']':
			bad = bad || i == start || argNum < 1 || argNum > argCount
			return argNum, i, bad
		case ch >= '0' && ch <= '9':
			if argNum <= argCount {
				argNum = (argNum * 10) + int(ch-'0')
			}
		default:
			bad = true
		}
	}

	return 0, len(format) - 1, true
}

// fmtBool prints a formatted version of boolean value v.
func fmtBool(w io.Writer, v interface{}) {
	switch bVal := v.(type) {
	case bool:
		writeBool(w, bVal)
	default:
		doWrite(w, errWrongArgType)
	}
}

func writeBool(w io.Writer, v bool) {
	if v {
		doWrite(w, trueValue)
		return
	}

	doWrite(w, falseValue)
}

// fmtString prints a formatted version of string or []byte value v, applying
// the padding specified by padLen.
func fmtString(w io.Writer, v interface{}, padLen int) {
	switch castedVal := v.(type) {
	case string:
		writeString(w, castedVal, padLen)
	case []byte:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		doWrite(w, castedVal)
	default:
		doWrite(w, errWrongArgType)
	}
}

// writeString prints s left-padded with spaces to padLen characters.
func writeString(w io.Writer, s string, padLen int) {
	fmtRepeat(w, ' ', padLen-len(s))
	// converting the string to a byte slice triggers a memory allocation
	// so we need to do this one byte at a time.
	for i := 0; i < len(s); i++ {
		writeByte(w, s[i])
	}
}

// fmtValue prints v using the default verb for its type.
func fmtValue(w io.Writer, v interface{}, padLen int) {
	switch castedVal := v.(type) {
	case nil:
		doWrite(w, nilValue)
	case bool:
		writeBool(w, castedVal)
	case string, []byte:
		fmtString(w, v, padLen)
	case uint8, uint16, uint32, uint64, uintptr, int8, int16, int32, int64, int:
		fmtInt(w, v, 10, padLen)
	case *kernel.Error:
		if castedVal == nil {
			doWrite(w, nilValue)
			return
		}
		writeString(w, castedVal.Message, padLen)
	case error:
		writeString(w, castedVal.Error(), padLen)
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtRepeat writes count bytes with value ch.
func fmtRepeat(w io.Writer, ch byte, count int) {
	for i := 0; i < count; i++ {
		writeByte(w, ch)
	}
}

// fmtInt prints out a formatted version of v in the requested base, applying
// the padding specified by padLen. This function supports all built-in signed
// and unsigned integer types and base 8, 10 and 16 output.
func fmtInt(w io.Writer, v interface{}, base, padLen int) {
	var (
		numFmtBuf        [maxBufSize + 1]byte
		sval             int64
		uval             uint64
		divider          uint64
		remainder        uint64
		padCh            byte
		left, right, end int
	)

	if padLen >= maxBufSize {
		padLen = maxBufSize - 1
	}

	switch base {
	case 8:
		divider = 8
		padCh = '0'
	case 10:
		divider = 10
		padCh = ' '
	case 16:
		divider = 16
		padCh = '0'
	}

	switch v.(type) {
	case uint8:
		uval = uint64(v.(uint8))
	case uint16:
		uval = uint64(v.(uint16))
	case uint32:
		uval = uint64(v.(uint32))
	case uint64:
		uval = v.(uint64)
	case uintptr:
		uval = uint64(v.(uintptr))
	case int8:
		sval = int64(v.(int8))
	case int16:
		sval = int64(v.(int16))
	case int32:
		sval = int64(v.(int32))
	case int64:
		sval = v.(int64)
	case int:
		sval = int64(v.(int))
	default:
		doWrite(w, errWrongArgType)
		return
	}

	// Handle signs
	if sval < 0 {
		uval = uint64(-sval)
	} else if sval > 0 {
		uval = uint64(sval)
	}

	for right < maxBufSize {
		remainder = uval % divider
		if remainder < 10 {
			numFmtBuf[right] = byte(remainder) + '0'
		} else {
			// map values from 10 to 15 -> a-f
			numFmtBuf[right] = byte(remainder-10) + 'a'
		}

		right++

		uval /= divider
		if uval == 0 {
			break
		}
	}

	// Apply padding if required
	for ; right-left < padLen; right++ {
		numFmtBuf[right] = padCh
	}

	// Apply negative sign to the rightmost blank character (if using enough padding);
	// otherwise append the sign as a new char
	if sval < 0 {
		for end = right - 1; numFmtBuf[end] == ' '; end-- {
		}

		if end == right-1 {
			right++
		}

		numFmtBuf[end+1] = '-'
	}

	// Reverse in place
	end = right
	for right = right - 1; left < right; left, right = left+1, right-1 {
		numFmtBuf[left], numFmtBuf[right] = numFmtBuf[right], numFmtBuf[left]
	}

	doWrite(w, numFmtBuf[0:end])
}

// writeByte sends a single byte to w.
func writeByte(w io.Writer, b byte) {
	buf := [1]byte{b}
	doWrite(w, buf[:])
}

// doWrite is a proxy that uses the runtime.noescape hack to hide p from the
// compiler's escape analysis. Without this hack, the compiler cannot properly
// detect that p does not escape (due to the call to the yet unknown
// io.Writer) and plays it safe by flagging it as escaping. This causes the
// stack-allocated scratch buffers used by the formatting functions to be
// moved to the heap, triggering a memory allocation for each call.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. This function is copied over
// from runtime/stubs.go
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
