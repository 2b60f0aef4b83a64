//go:build structlayout

package example

// Foo is a counter in the middle of a 16-byte buffer.
//
// @layout(size = 16, align = 4)
// @derive(Copy, Clone, Debug, Default)
type Foo struct {
	// Field is a counter.
	// @field(offset = 4)
	Field int32
}

// Unaligned keeps a wide integer at an odd offset.
//
// @layout(size = 12, align = 1)
// @derive(Debug, Default)
type Unaligned struct {
	Wide int64 `layout:"offset = 3, get, set"`
	Tag  uint8 `layout:"offset = 11"`
}

// Header is the start of an ELF-like file.
//
// @layout(size = 8, align = 2, check(any))
// @derive(Copy, Debug)
type Header struct {
	// @field(offset = 0, get, set)
	Magic [4]uint8

	// @field(offset = 4)
	Version uint16

	// @field(offset = 6, set)
	flags uint16
}
