package codegen

import "github.com/stoewer/go-strcase"

// pascalCase renders a schema identifier as an exported Go identifier.
// Go's own export convention (capitalized = exported) stands in for the
// target-language case convention spec.md §4.7 calls for; unlike the Rust
// generator this module is grounded on, Go structs conventionally export
// both types and fields, so fields get pascal case here too rather than the
// snake case spec.md prescribes for Rust-shaped targets.
func pascalCase(name string) string {
	return strcase.UpperCamelCase(name)
}

// packageName renders one module path component as a Go package name:
// lower case, valid as a directory and import path segment.
func packageName(component string) string {
	return strcase.SnakeCase(component)
}
