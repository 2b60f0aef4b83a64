// Command structlayout generates explicit-layout records from annotated Go
// schema files.
//
// Usage:
//
//	//go:generate structlayout gen records_schema.go
package main

import (
	"context"

	"github.com/scott-cotton/cli"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}
