// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cliframe tooling CLI.
//
// The CLI generates descriptor files from handler source, validates and
// renders descriptor files, shows how a command line is tokenized, manages
// the configuration file and runs a small demo handler through the framework.
package cmd
