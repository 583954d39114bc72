// Package config defines the format-agnostic description of a pipeline graph,
// along with the Loader and Writer interfaces used to read and persist it.
//
// The `config.Description` is the single source of truth for the `graph`,
// `validate` and `scheduler` packages. Concrete implementations of the
// interfaces, such as for HCL and JSON, are provided in separate packages.
package config
