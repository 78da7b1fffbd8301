// Command metacache inspects and manages the local metadata lookup cache.
//
// The cache stores movie/TV lookup results keyed by normalized
// (media type, title, year) queries so embedding tools can skip repeated
// remote searches. Subcommands cover query-path reads and writes (lookup,
// store), cache management (list, clear, stats), and configuration
// utilities (config init/validate/path).
package main
