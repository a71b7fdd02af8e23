// Package archive builds and extracts the zip archives that make up a container.
//
// Entry names are always forward-slash relative paths so containers round trip between
// Windows and Unix hosts. Deflate is provided by klauspost/compress.
package archive
