// Package cli defines the Cobra root command of create-template-next-15.
// The command has no subcommands so any word, including "help" or
// "version", can be used as a project name. Flag parsing, config defaults
// and output formatting live here; the pipeline itself lives in scaffold.
package cli
