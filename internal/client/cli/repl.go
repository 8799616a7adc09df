package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Capture(ctx context.Context) error
	AddStudent(ctx context.Context) error
	Students(ctx context.Context) error
	RenameStudent(ctx context.Context) error
	DeleteStudent(ctx context.Context) error
	List(ctx context.Context) error
	Export(ctx context.Context) error
	DeleteEvidence(ctx context.Context) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the ClassKeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — sign in with a pasted ID token
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - capture        — record a piece of evidence
//	  - addstudent     — register a student
//	  - students       — list registered students
//	  - renamestudent  — rename a student
//	  - delstudent     — remove a student
//	  - list           — list synced evidence
//	  - export         — download evidence with metadata sidecars
//	  - delete         — delete an evidence record
//	  - sync           — drain the offline queue now
//	  - status         — show pending count and sync activity
//	  - logout         — sign out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ck> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: capture, addstudent, students, renamestudent, delstudent, (l)ist, export, delete, sync, status, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "capture":
			_ = a.Capture(ctx)

		case "addstudent":
			_ = a.AddStudent(ctx)

		case "students":
			_ = a.Students(ctx)

		case "renamestudent":
			_ = a.RenameStudent(ctx)

		case "delstudent":
			_ = a.DeleteStudent(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "export":
			_ = a.Export(ctx)

		case "delete":
			_ = a.DeleteEvidence(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "status", "pending":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
