// Package registry discovers the files of a template tree, renders their
// parameterized names and registers their contents for rendering.
//
// A template root holds exactly one project directory whose name is an
// expression over project_slug (for example "{{ .project_slug }}"). Only that
// directory is materialized; the manifest, the hooks directory and any other
// top-level entry stay behind.
//
// Files matching the copy filter are copied byte-for-byte and never parsed.
// Every other file is registered in a render.Arena under its rendered path
// relative to the project directory, so templates can include each other with
// {{ template "docs/header.md" . }}. Files containing a {{define}} action
// override blocks of a base and are registered after all other files.
package registry
