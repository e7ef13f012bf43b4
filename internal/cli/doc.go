// Package cli parses the command line into the application settings and
// the training arguments. Explicitly set training flags are recorded as
// fields so configuration updates only touch what the user passed;
// arguments after the flags become dotted key/value options.
package cli
