// Package cli provides the interactive ChemTutor command-line client.
//
// It wires configuration, local storage, the API client and the services
// behind a small REPL. Chemistry commands (balance, ask, correct) work signed
// in or out; account commands need a session.
//
// A command whose request is rejected as unauthenticated prints
// "Session expired. Please login again." and the prompt falls back to the
// signed-out view, because the services have already dropped the stored
// credential.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
