// Package registry maps provider names from configuration to Completer factories.
package registry
