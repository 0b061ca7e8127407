// Package source acquires template trees.
//
// A template is either a local directory or a git repository URL, which is
// cloned shallowly into a private temporary directory. Before rendering the
// tree is copied into another private directory without VCS metadata or
// symlinks, so nothing the run does can touch the original.
//
// Refreshing git submodules and svn checkouts is best effort: failures are
// returned as warnings and never abort a run.
package source
