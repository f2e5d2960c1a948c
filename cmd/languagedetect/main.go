// Package main is the language detection demo.
//
// Usage:
//
//	languagedetect serve [--addr 127.0.0.1:5000]
//	languagedetect console
package main

import "os"

func main() {
	os.Exit(run())
}
