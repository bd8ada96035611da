// Package source defines the unit handed from file discovery to the build.
package source

// File is one discovered source file with its content already read.
type File struct {
	Path    string
	Content []byte
}
