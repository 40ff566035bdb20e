// Package watch reruns generation when proto files change.
//
// A Watcher follows every directory beneath its roots, including ones
// created later. Writes, creates, renames and removals of .proto files are
// collected until the tree has been quiet for the configured delay, then
// the callback runs once with the changed paths.
package watch
