// Package config defines the training configuration: an immutable tree of
// values (Node) owned by a Configuration wrapper that layers defaults, the
// configuration file, a command-line override string, individual options
// and command-line arguments on top of each other before being frozen.
//
// Reading files is delegated to a Loader so that the format-specific
// parsers live in their own packages.
package config
