// Package console prints the sanitized projection of child output.
package console
