// Package materialize turns a template tree into a project tree.
//
// A run moves through the stages Init, ResolveVariables, RegisterTemplates,
// StageRender, Promote and Done; any failure moves it to Aborted.
//
// Everything up to and including StageRender writes into a private staging
// directory. Only Promote touches the output root, copying the staged tree
// through a guard built on the output root itself. Promotion is not
// transactional: when it fails halfway, the files already copied stay and the
// error lists them.
//
// Temporary directories (clone, template copy, staging) are removed when Run
// returns, whatever the outcome.
package materialize
