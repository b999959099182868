// Package verify decides whether dump files are correct, complete copies of
// catalog games.
//
// A dump folder is matched file by file: each file's SHA-1 selects candidate
// ROMs from the catalog, the name and size narrow the candidates to one, and
// all matches must belong to a single game whose full ROM set must be
// present. Cue sheets get special treatment because compressed dumps do not
// preserve them: a reconstructed sheet that fails to byte-match the catalog
// is reconciled structurally against a user-supplied reference instead of
// failing outright.
package verify
