// SPDX-License-Identifier: MPL-2.0

// Package config handles framework configuration using Viper with CUE as the file format.
//
// Configuration is read from config.cue in the cliframe configuration directory
// (~/.config/cliframe on Linux, ~/Library/Application Support/cliframe on macOS,
// %APPDATA%\cliframe on Windows) or, failing that, from the working directory.
// The file is validated against an embedded CUE schema. Environment variables
// prefixed with CLIFRAME_ override file values.
package config
