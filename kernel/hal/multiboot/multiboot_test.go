package multiboot

import (
	"encoding/binary"
	"runtime"
	"testing"
	"unsafe"
)

func TestGetFramebufferInfo(t *testing.T) {
	defer SetInfoPtr(0)

	t.Run("no info pointer", func(t *testing.T) {
		SetInfoPtr(0)
		if info := GetFramebufferInfo(); info != nil {
			t.Fatalf("expected nil framebuffer info; got %+v", info)
		}
	})

	t.Run("missing tag", func(t *testing.T) {
		data := mockInfo(false)
		SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

		if info := GetFramebufferInfo(); info != nil {
			t.Fatalf("expected nil framebuffer info; got %+v", info)
		}
		runtime.KeepAlive(data)
	})

	t.Run("EGA text framebuffer", func(t *testing.T) {
		data := mockInfo(true)
		SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

		info := GetFramebufferInfo()
		if info == nil {
			t.Fatal("expected framebuffer info to be available")
		}

		exp := FramebufferInfo{
			PhysAddr: 0xb8000,
			Pitch:    160,
			Width:    80,
			Height:   25,
			Bpp:      16,
			Type:     FramebufferTypeEGA,
		}
		if *info != exp {
			t.Fatalf("expected framebuffer info:\n%+v\ngot:\n%+v", exp, *info)
		}
		runtime.KeepAlive(data)
	})
}

// mockInfo assembles a multiboot2 info structure containing a boot loader
// name tag, an optional framebuffer tag and the end tag. The returned slice
// is 8-byte aligned.
func mockInfo(withFramebuffer bool) []byte {
	backing := make([]uint64, 16)
	data := (*[128]byte)(unsafe.Pointer(&backing[0]))[:]
	le := binary.LittleEndian

	offset := 8

	// boot loader name tag (type 2): "grub\0", padded to 8 bytes
	le.PutUint32(data[offset:], 2)
	le.PutUint32(data[offset+4:], 13)
	copy(data[offset+8:], "grub\x00")
	offset += 16

	if withFramebuffer {
		le.PutUint32(data[offset:], uint32(tagFramebufferInfo))
		le.PutUint32(data[offset+4:], 32)
		le.PutUint64(data[offset+8:], 0xb8000)
		le.PutUint32(data[offset+16:], 160)
		le.PutUint32(data[offset+20:], 80)
		le.PutUint32(data[offset+24:], 25)
		data[offset+28] = 16
		data[offset+29] = byte(FramebufferTypeEGA)
		offset += 32
	}

	// end tag
	le.PutUint32(data[offset:], uint32(tagMbSectionEnd))
	le.PutUint32(data[offset+4:], 8)
	offset += 8

	le.PutUint32(data[0:], uint32(offset))
	return data
}
