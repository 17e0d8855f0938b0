// Package archive packages a crawl's pages and images into a ZIP file.
//
// The archive layout mirrors what a person saving a site by hand would
// produce:
//
//	pages/page_001_home.html
//	pages/page_002_about.html
//	images/home_header.png
//	images/about_gallery.jpg
//	summary.txt
//
// Page files are numbered in discovery order and carry a provenance
// comment with the source URL. Image files are named from their asset
// label; name collisions get a numeric suffix.
package archive
