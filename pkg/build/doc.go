// Package build sequences the two external tools that turn a script into a
// standalone executable: an obfuscator followed by a packager.
//
// The orchestrator does not interpret tool output. In the default legacy mode
// it does not branch on exit statuses either: the packager always runs after
// the obfuscator, whatever the obfuscator's outcome. Options.CheckStatus opts
// into halting at the first failing step.
package build
