//go:build structlayout

package testdata

import (
	"time"
)

// Foo is the basic record.
//
// It has two documentation paragraphs.
//
// @layout(size = 16, align = 4)
// @derive(Copy, Clone, Debug, Default)
type Foo struct {
	// Field is a counter.
	// @field(offset = 4)
	Field int32

	Wide  int64  `layout:"offset = 8, get, set"`
	flags uint16 `json:"flags" layout:"offset = 2, ref"`
}

// @layout(size = 0x40, align = 8, check(Pod))
// @derive(Debug)
// @derive(Debug, Default)
type Pairs struct {
	// @field(offset = 0, get)
	Pair Pair[int32, uint8]

	// @field(offset = 8)
	Stamp time.Duration
}

type Pair[A, B any] struct {
	First  A
	Second B
}

type Pod interface{}

// IgnoredType has no annotation and is skipped.
type IgnoredType struct {
	Field uint32
}
