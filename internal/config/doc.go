// Package config defines the run settings of winget-upgrade and provides
// helpers to load, validate and save them in YAML format.
//
// The file is optional: without it the platform defaults apply (winget on
// Windows, apt-get elsewhere). Keys present in the file override the defaults
// one by one, except update and upgrade: a block for either replaces the
// default invocation entirely, args and env included.
package config
