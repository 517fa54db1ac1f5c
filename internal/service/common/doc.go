// Package common holds helpers shared by several services.
//
// It detects the current system actor (hostname/username) recorded in the
// header of every run log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
