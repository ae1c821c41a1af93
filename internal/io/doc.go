// Package ioutils provides file system and image utilities for saved
// artwork.
//
// # File Operations
//
//	// Ensure the output directory exists
//	err := ioutils.EnsureDir("/path/to/artwork")
//
// # Image Probing
//
// The ImageService reads just enough of a saved cover to report its
// format and dimensions. It never rewrites the file:
//
//	svc := ioutils.NewImageService()
//	info, err := svc.ProbeFile("/path/to/cover.jpg")
//	fmt.Println(info) // "jpeg 3000x3000"
package ioutils
