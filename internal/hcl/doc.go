// Package hcl provides the HCL implementation of configuration parsing. It
// turns HCL files, override strings and single option values into cty
// values that the config package assembles into a configuration tree.
//
// Attributes map to keys. Blocks map to nested mappings keyed by the block
// type and then by each label, so
//
//	model_attributes "linear" {
//	  in_features = 4
//	}
//
// is equivalent to model_attributes = { linear = { in_features = 4 } }.
// Expressions may reference the process environment through env.NAME.
package hcl
