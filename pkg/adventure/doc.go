// Package adventure offers text-adventure style questions on top of a story:
// yes/no answers and cardinal directions typed in free form, read against
// fixed vocabularies.
package adventure
