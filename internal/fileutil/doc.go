// Package fileutil provides the filesystem primitives the engines share:
// bounded-prefix content hashing, copy helpers, and reversible trash moves.
package fileutil
