package example

import (
	"fmt"
	"testing"
	"unsafe"
)

func TestFooRoundTrip(t *testing.T) {
	foo := NewFoo()
	if foo.Field() != 0 {
		t.Errorf("Field: expected 0, got %d", foo.Field())
	}

	foo.SetField(13)
	if foo.Field() != 13 {
		t.Errorf("Field: expected 13, got %d", foo.Field())
	}

	// Borrows alias the backing buffer
	*foo.FieldMut() = 42
	if foo.Field() != 42 {
		t.Errorf("Field after FieldMut: expected 42, got %d", foo.Field())
	}
	if *foo.FieldRef() != 42 {
		t.Errorf("FieldRef: expected 42, got %d", *foo.FieldRef())
	}
	if foo.FieldRef() != foo.FieldMut() {
		t.Error("FieldRef and FieldMut point at different bytes")
	}
}

func TestFooLayout(t *testing.T) {
	if size := unsafe.Sizeof(Foo{}); size != 16 {
		t.Errorf("Sizeof(Foo): expected 16, got %d", size)
	}
	if align := unsafe.Alignof(Foo{}); align != 4 {
		t.Errorf("Alignof(Foo): expected 4, got %d", align)
	}

	var foo Foo
	foo.SetField(-1)
	for i, b := range foo.buf {
		want := byte(0)
		if i >= 4 && i < 8 {
			want = 0xff
		}
		if b != want {
			t.Errorf("buf[%d]: expected 0x%x, got 0x%x", i, want, b)
		}
	}
}

func TestFooCopyAndClone(t *testing.T) {
	foo := NewFoo().SetField(7)

	var dst Foo
	if got := foo.CopyTo(&dst); got != &dst {
		t.Error("CopyTo must return dst")
	}
	if dst.Field() != 7 {
		t.Errorf("CopyTo: expected 7, got %d", dst.Field())
	}

	clone := foo.Clone()
	if clone == foo {
		t.Fatal("Clone returned the receiver")
	}
	clone.SetField(8)
	if foo.Field() != 7 {
		t.Errorf("Clone shares storage: original changed to %d", foo.Field())
	}
}

func TestUnaligned(t *testing.T) {
	if size := unsafe.Sizeof(Unaligned{}); size != 12 {
		t.Errorf("Sizeof(Unaligned): expected 12, got %d", size)
	}

	u := NewUnaligned()
	u.SetWide(-5).SetTag(7)

	if u.Wide() != -5 {
		t.Errorf("Wide: expected -5, got %d", u.Wide())
	}
	if u.Tag() != 7 {
		t.Errorf("Tag: expected 7, got %d", u.Tag())
	}

	// Wide occupies bytes 3 through 10 and must not touch Tag
	u.SetWide(-1)
	if u.Tag() != 7 {
		t.Errorf("Tag after SetWide: expected 7, got %d", u.Tag())
	}
	if u.buf[2] != 0 {
		t.Errorf("buf[2]: expected 0, got 0x%x", u.buf[2])
	}

	*u.TagMut()++
	if u.Tag() != 8 {
		t.Errorf("Tag after TagMut: expected 8, got %d", u.Tag())
	}
}

func TestHeader(t *testing.T) {
	var h Header
	h.SetMagic([4]uint8{0x7f, 'E', 'L', 'F'}).SetVersion(2).setFlags(0xffff)

	if h.Magic() != [4]uint8{0x7f, 'E', 'L', 'F'} {
		t.Errorf("Magic: expected ELF magic, got %v", h.Magic())
	}
	if *h.VersionRef() != 2 {
		t.Errorf("Version: expected 2, got %d", *h.VersionRef())
	}
	if h.buf[6] != 0xff || h.buf[7] != 0xff {
		t.Errorf("flags: expected 0xffff, got % x", h.buf[6:])
	}

	var dst Header
	h.CopyTo(&dst)
	if dst != h {
		t.Error("CopyTo did not copy every byte")
	}
}

func TestDebugStrings(t *testing.T) {
	var h Header
	h.SetMagic([4]uint8{0x7f, 'E', 'L', 'F'}).SetVersion(2).setFlags(1)

	tests := []struct {
		name string
		rec  fmt.Stringer
		want string
	}{
		{"Foo", NewFoo().SetField(13), "Foo{Field: 13}"},
		{"Unaligned", NewUnaligned().SetWide(-5).SetTag(7), "Unaligned{Wide: -5, Tag: 7}"},
		// flags has no reader, so it is left out
		{"Header", &h, "Header{Magic: [127 69 76 70], Version: 2}"},
	}

	for _, tt := range tests {
		if got := tt.rec.String(); got != tt.want {
			t.Errorf("%s.String(): expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func ExampleFoo() {
	foo := NewFoo().SetField(13)
	*foo.FieldMut() += 29
	fmt.Println(foo)
	// Output: Foo{Field: 42}
}
