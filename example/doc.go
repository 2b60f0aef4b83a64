// Package example shows the records structlayout generates from the
// annotated declarations in records_schema.go.
package example

//go:generate go run github.com/alexhholmes/structlayout/cmd/structlayout gen records_schema.go
