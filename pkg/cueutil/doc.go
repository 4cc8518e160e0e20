// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Descriptor files and the framework configuration are both validated the
// same way:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with the schema definition
//  3. Validate and decode to a Go struct
//
// # Usage
//
//	//go:embed descriptor_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Set](
//	    schemaBytes,
//	    data,
//	    "#Commands",
//	    cueutil.WithFilename("commands.cue"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes the CUE path for debugging
//	}
//	return result.Value.Commands, nil
//
// Marshal goes the other way and renders a Go value as CUE source, which is
// how the descriptor generator writes commands.cue.
package cueutil
