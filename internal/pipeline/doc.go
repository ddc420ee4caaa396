// Package pipeline implements the two text stages applied to every document:
//   - Include resolution (server-side-include markers spliced from fragment files)
//   - URL rewriting (ordered rule set over quoted attribute values)
//
// Both stages work on raw text with regular expressions. Documents are never
// parsed into a DOM, so markup the stages do not touch passes through
// byte-for-byte. Tree walking and file output live in the root ssirewrite
// package; this package does no writes.
package pipeline
