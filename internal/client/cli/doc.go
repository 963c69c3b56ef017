// Package cli provides the interactive credhex shell.
//
// Every line typed at the prompt is run through a fresh cobra command tree,
// so each command parses its own arguments and flags. The shell holds no
// domain logic: it turns input into calls on the vault controller and
// prints certificate cards.
//
// The REPL is started with App.Run, which blocks until the user exits.
package cli
