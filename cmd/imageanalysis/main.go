// Package main is the image analysis demo.
//
// Usage:
//
//	imageanalysis [image-file]
//
// The image is analyzed, the detected objects are drawn into objects.jpg and
// the background of the public copy of the image is removed into background.png.
package main

import "os"

func main() {
	os.Exit(run())
}
