// Package directory maps mesh node numbers to human-readable identities.
//
// A Directory is built once from the radio's node snapshot when a session starts and
// is read-only afterwards, so lookups need no locking. Nodes that join the mesh, or
// rename themselves, after the snapshot was taken are not reflected: the directory is
// a startup snapshot, not a live view.
//
// Resolve is total. Unknown nodes resolve to a synthetic identity whose names are
// "Unknown", so callers never have to handle a lookup failure.
package directory
