// Package tools wraps the external programs that do the heavy lifting:
// chdman extracts compressed CD images, binmerge splits combined track
// binaries, and DolphinTool hashes the logical payload of RVZ images.
//
// Each client runs its binary as a blocking child process through an
// Executor, which tests replace to avoid spawning real processes. chdman is
// special: it reports live progress on stderr, so its stderr is passed
// through rather than captured and its failures carry no tool output.
package tools
