// Package types defines the core types and interfaces shared across stencil.
// This includes the variable model (VariableSpec, Bindings), the TemplateItem
// produced by template discovery, and the FS interface through which every
// filesystem access of a run is made.
package types
