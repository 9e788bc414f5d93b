// Package exports registers all export definitions with the core registry.
// Each file registers its exports from init, so a blank import of this
// package makes every export available.
package exports
