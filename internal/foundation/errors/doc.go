// Package errors provides the classified errors used across webtree.
//
// Packages declare sentinels with a builder and return errors built from the
// same category and message plus context, so errors.Is matches them:
//
//	var ErrNodeNotFound = errors.PathError("node not found").Build()
//
//	return nil, errors.PathError("node not found").
//		WithContext("path", p).
//		Build()
//
// The CLI maps categories to exit codes with CLIErrorAdapter.
package errors
