// Package config provides configuration structures and utilities for sitegrab.
// It defines the crawl options, image collection settings, and report and
// archive output preferences.
package config
