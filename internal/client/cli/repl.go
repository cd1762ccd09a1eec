package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool

	Health(ctx context.Context, arg string) error
	Balance(ctx context.Context, arg string) error
	Ask(ctx context.Context, arg string) error
	Again(ctx context.Context, arg string) error
	History(ctx context.Context, arg string) error
	Categories(ctx context.Context, arg string) error
	Correct(ctx context.Context, arg string) error

	Register(ctx context.Context, arg string) error
	Login(ctx context.Context, arg string) error
	Logout(ctx context.Context, arg string) error
	Profile(ctx context.Context, arg string) error
	UpdateProfile(ctx context.Context, arg string) error
	DeleteAccount(ctx context.Context, arg string) error
	Status(ctx context.Context, arg string) error
}

const (
	helpSignedOut = "Available commands: health, balance, ask, again <n>, history, categories, correct, register, login, status, exit"
	helpSignedIn  = "Available commands: health, balance, ask, again <n>, history, categories, correct, profile, update, delete-account, status, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the ChemTutor CLI.
//
// It reads a line from reader, takes the first word as the command and
// passes the rest of the line, as typed, to the handler on 'a'. Handlers that need more
// input read it from the same reader. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help               show available commands
//	  - health             check that the server is up
//	  - balance [eq]       balance a chemical equation
//	  - ask [question]     ask a chemistry question
//	  - again <n>          re-ask question n from history
//	  - history            list recent questions
//	  - categories         list question categories
//	  - correct [text]     check a chemistry statement
//	  - status             show the local session
//	  - exit | quit        leave the program
//
//	Not logged in:
//	  - register, login
//
//	Logged in:
//	  - profile, update, delete-account, logout
//
// Errors returned by handlers are already reported to the user by the
// handler itself, so the loop ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("chem%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		word, arg := splitCommand(line)
		if word == "" {
			continue
		}
		cmd := strings.ToLower(word)

		switch cmd {
		case "help", "?":
			if a.isLoggedIn(ctx) {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "health", "ping":
			_ = a.Health(ctx, arg)

		case "balance", "b":
			_ = a.Balance(ctx, arg)

		case "ask", "a":
			_ = a.Ask(ctx, arg)

		case "again", "r":
			_ = a.Again(ctx, arg)

		case "history", "h":
			_ = a.History(ctx, arg)

		case "categories":
			_ = a.Categories(ctx, arg)

		case "correct", "c":
			_ = a.Correct(ctx, arg)

		case "register":
			_ = a.Register(ctx, arg)

		case "login":
			_ = a.Login(ctx, arg)

		case "logout":
			_ = a.Logout(ctx, arg)

		case "profile":
			_ = a.Profile(ctx, arg)

		case "update":
			_ = a.UpdateProfile(ctx, arg)

		case "delete-account":
			_ = a.DeleteAccount(ctx, arg)

		case "status":
			_ = a.Status(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

// splitCommand returns the first word of line and the raw text after the
// whitespace that follows it. Only the line ending is stripped from the text.
func splitCommand(line string) (cmd, rest string) {
	line = strings.TrimLeft(strings.TrimRight(line, "\r\n"), " \t")
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeft(line[i:], " \t")
}
