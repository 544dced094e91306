// Package locator implements the path algebra shared by every other package
// in this module.
//
// A locator is a string of the form [scheme://]segment/segment/... and is
// decomposed into a protocol ("" for local paths) and an ordered list of
// segments. Absolute local paths keep "/" as their first segment, mirroring
// how POSIX path libraries report the root:
//
//	locator.Split("s3://bucket/prefix/x.json") // "s3", [bucket prefix x.json]
//	locator.Split("/data/x.json")              // "", [/ data x.json]
//
// Glob metacharacters (* ? [ ]) are significant unless escaped with a
// backslash. Before any segment splitting the unescaped ones are swapped for
// private-use sentinels (see Escape), which keeps "?" from being read as a
// query separator and lets a literal "\*" survive a round trip.
//
// Every function here is pure: no filesystem or network access.
package locator
