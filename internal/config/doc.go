// Package config loads the optional CUE configuration file.
//
// A file is unified with the embedded #Config definition, so type errors,
// out-of-range values and unknown fields are reported with their CUE
// source position before anything is opened. Fields left out keep the
// values from Default; command-line flags override both.
package config
