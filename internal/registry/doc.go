// Package registry provides the central "glue" for the module system.
//
// The Registry maps every node kind to the constructor of its executor, and
// every script type name used by scripted nodes to the constructor of the
// script. Modules fill the registry once at startup; lookups of anything not
// registered fail with ErrUnregistered instead of being resolved dynamically.
//
// During application startup the registry is validated to ensure every node
// kind has an executor, preventing a wide class of runtime errors.
package registry
