// Package render evaluates template expressions for stencil.
//
// Expressions use Go's text/template syntax with missing keys treated as
// errors, so an expression referencing an unbound variable fails instead of
// rendering "<no value>". Engine renders standalone strings (variable
// defaults, path segments). Arena holds every template file of one run in a
// shared namespace so files can include each other by name and override
// blocks of a base file with {{define}}.
package render
