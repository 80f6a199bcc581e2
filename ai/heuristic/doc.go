// Package heuristic provides enrichment services implemented with local rules.
//
// The topic extractor returns the leading whitespace-delimited tokens of the
// text. The entity extractor groups runs of capitalised words into phrases
// and sorts them into organizations (by institutional suffix) or people.
// Neither performs I/O, so both are deterministic and never fail.
package heuristic
