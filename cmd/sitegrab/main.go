// Package main provides the entry point for the sitegrab CLI.
//
// Sitegrab crawls websites, follows same-domain links in breadth-first
// order, and collects the images each page references.
//
// Usage:
//
//	sitegrab grab <url>
//	sitegrab grab --archive site.zip <url>
//
// See --help for all available options.
package main

// main is the entry point for sitegrab.
func main() {
	Execute()
}
