package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TypeInfo is the size and the smallest alignment a type has on any gc
// target. 64-bit scalars are only 4-aligned on 32-bit platforms, so an
// obligation that fails with the smallest alignment fails everywhere.
type TypeInfo struct {
	Size  uint64
	Align uint64
}

// SizeOf returns the size and minimum alignment of a Go type
// Returns error for types whose size depends on the platform or on
// declarations the generator cannot see
func SizeOf(goType string) (TypeInfo, error) {
	goType = strings.TrimSpace(goType)

	// Primitive types
	switch goType {
	case "uint8", "int8", "byte", "bool":
		return TypeInfo{1, 1}, nil
	case "uint16", "int16":
		return TypeInfo{2, 2}, nil
	case "uint32", "int32", "float32", "rune":
		return TypeInfo{4, 4}, nil
	case "uint64", "int64", "float64":
		return TypeInfo{8, 4}, nil
	case "complex64":
		return TypeInfo{8, 4}, nil
	case "complex128":
		return TypeInfo{16, 4}, nil
	case "int", "uint", "uintptr":
		return TypeInfo{}, fmt.Errorf("platform dependent type: %s", goType)
	}

	// Slice (no fixed size, but neither is it a layout target)
	if strings.HasPrefix(goType, "[]") {
		return TypeInfo{}, fmt.Errorf("slice types have no fixed layout: %s", goType)
	}

	// Array: [N]T
	if strings.HasPrefix(goType, "[") && strings.Contains(goType, "]") {
		return arraySize(goType, SizeOf)
	}

	// Pointer (never trivially copyable)
	if strings.HasPrefix(goType, "*") {
		return TypeInfo{}, fmt.Errorf("pointer types not supported: %s", goType)
	}

	// Unknown/struct type - needs type registry
	return TypeInfo{}, fmt.Errorf("unknown type: %s (use type registry for named types)", goType)
}

var arrayRe = regexp.MustCompile(`^\[([0-9a-fA-FxXoObB_]+)\](.+)$`)

func arraySize(goType string, elem func(string) (TypeInfo, error)) (TypeInfo, error) {
	// Parse: [16]byte → 16 * 1
	matches := arrayRe.FindStringSubmatch(goType)
	if matches == nil {
		return TypeInfo{}, fmt.Errorf("invalid array type: %s", goType)
	}

	n, err := strconv.ParseUint(matches[1], 0, 64)
	if err != nil {
		return TypeInfo{}, fmt.Errorf("invalid array length: %s", matches[1])
	}

	info, err := elem(matches[2])
	if err != nil {
		return TypeInfo{}, fmt.Errorf("array element: %w", err)
	}

	return TypeInfo{Size: n * info.Size, Align: info.Align}, nil
}

// TypeRegistry tracks record sizes and named types for layout analysis
type TypeRegistry struct {
	types   map[string]TypeInfo // type name → size and alignment
	aliases map[string]string   // named type → underlying type
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:   make(map[string]TypeInfo),
		aliases: make(map[string]string),
	}
}

// Register adds a type with a known size and alignment, such as a record
// generated in the same package
func (r *TypeRegistry) Register(name string, size, align uint64) {
	r.types[name] = TypeInfo{Size: size, Align: align}
}

// RegisterAlias adds a named type mapping (e.g., type PageID uint64)
func (r *TypeRegistry) RegisterAlias(alias, underlying string) {
	r.aliases[alias] = underlying
}

// Lookup returns the size of a registered type
func (r *TypeRegistry) Lookup(name string) (TypeInfo, bool) {
	info, ok := r.types[name]
	return info, ok
}

// ResolveType resolves named types to their underlying types
// Returns the original type if not registered
func (r *TypeRegistry) ResolveType(goType string) string {
	seen := make(map[string]bool)
	for !seen[goType] {
		seen[goType] = true
		underlying, ok := r.aliases[goType]
		if !ok {
			break
		}
		goType = underlying
	}
	return goType
}

// SizeOf calculates size using the registry for named types
func (r *TypeRegistry) SizeOf(goType string) (TypeInfo, error) {
	resolved := r.ResolveType(strings.TrimSpace(goType))

	// Registered records win over everything else
	if info, ok := r.Lookup(resolved); ok {
		return info, nil
	}

	// Handle arrays of registered types: [N]RegisteredType
	if strings.HasPrefix(resolved, "[") && !strings.HasPrefix(resolved, "[]") {
		return arraySize(resolved, r.SizeOf) // Recursive
	}

	info, err := SizeOf(resolved)
	if err != nil {
		return TypeInfo{}, fmt.Errorf("%s: %w", goType, err)
	}
	return info, nil
}
