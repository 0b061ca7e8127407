package types

import "io/fs"

// TemplateItem is one file of the template tree after its path was rendered
type TemplateItem struct {
	// Name is the rendered path relative to the project directory, '/'-separated.
	// Templates are registered and looked up under this name.
	Name string

	// OutputRel is the rendered path relative to the output root, '/'-separated.
	OutputRel string

	// Source is the absolute path of the template file.
	Source string

	// CopyRaw marks files that are copied byte-for-byte instead of rendered.
	CopyRaw bool

	// Mode holds the permission bits of the source file.
	Mode fs.FileMode
}
