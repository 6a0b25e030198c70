// Package web embeds the wall page served to browsers.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html static
var files embed.FS

// Index returns the wall page.
func Index() ([]byte, error) {
	return files.ReadFile("index.html")
}

// Static returns the page's scripts and styles rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
