// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates configuration data against embedded CUE schemas.
//
// Every entry point follows the same flow:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Compile (or encode) the user data and unify it with the definition
//  3. Validate, then decode to a Go map for viper to merge
//
// # Usage
//
//	//go:embed config_schema.cue
//	var configSchema string
//
//	values, err := cueutil.DecodeFile(configSchema, "#Config", data,
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
//	if err != nil {
//	    return err // error carries the CUE path of the offending field
//	}
//	return v.MergeConfigMap(values)
package cueutil
