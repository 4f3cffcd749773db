// Command todoctl is a terminal front end for the todo API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"todoapp/internal/client"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitAuthError = 2
	exitAPIError  = 3
)

const sessionFile = "session"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage(os.Stderr)
		return exitUserError
	}

	server := os.Getenv("TODO_API_URL")
	if server == "" {
		server = "http://localhost:8080"
	}
	api := client.New(server)
	if session, err := os.ReadFile(sessionPath()); err == nil {
		api.SetSession(strings.TrimSpace(string(session)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return cmdLogin(ctx, api, rest)
	case "logout":
		return cmdLogout(ctx, api)
	case "list":
		return cmdList(ctx, api, rest)
	case "add":
		return cmdAdd(ctx, api, rest)
	case "done":
		return cmdDone(ctx, api, rest)
	case "rm":
		return cmdRm(ctx, api, rest)
	case "edit":
		return cmdEdit(ctx, api, rest)
	case "help", "-h", "--help":
		usage(os.Stdout)
		return exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", cmd)
		return exitUserError
	}
}

func usage(w *os.File) {
	fmt.Fprint(w, `Usage: todoctl <command> [options]

Commands:
  login <username>   Log in and store the session
  logout             Log out and drop the session
  list               List todos (-filter all|active|completed)
  add <title>        Add a todo (-desc, -priority, -due)
  done <id>          Mark a todo completed
  rm <id>            Delete a todo
  edit <id>          Change a todo (-title, -desc, -priority, -due, -clear-due, -reopen)

The server defaults to http://localhost:8080; override with TODO_API_URL.
`)
}

func cmdLogin(ctx context.Context, api *client.Client, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "error: usage: todoctl login <username>")
		return exitUserError
	}
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading password: %v\n", err)
		return exitUserError
	}
	if err := api.Login(ctx, args[0], strings.TrimRight(password, "\r\n")); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitAuthError
	}
	if err := saveSession(api.Session()); err != nil {
		fmt.Fprintf(os.Stderr, "error: saving session: %v\n", err)
		return exitAuthError
	}
	fmt.Println("Logged in.")
	return exitSuccess
}

func cmdLogout(ctx context.Context, api *client.Client) int {
	_ = api.Logout(ctx) // best effort; the local session goes away regardless
	_ = os.Remove(sessionPath())
	fmt.Println("Logged out.")
	return exitSuccess
}

func cmdList(ctx context.Context, api *client.Client, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	filter := fs.String("filter", "all", "all, active or completed")
	if err := fs.Parse(args); err != nil {
		return exitUserError
	}

	ctl := client.NewController(api, nil)
	if err := ctl.Load(ctx); err != nil {
		return apiFail(err)
	}
	ctl.SetFilter(client.Filter(*filter))

	todos := ctl.Visible()
	if len(todos) == 0 {
		fmt.Println("No todos.")
		return exitSuccess
	}
	for _, t := range todos {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		due := ""
		if t.DueDate != nil {
			due = "  due " + t.DueDate.Format("2006-01-02")
		}
		fmt.Printf("[%s] %-6s %s  %s%s\n", mark, t.Priority, t.ID[:8], t.Title, due)
	}
	stats := ctl.Stats()
	fmt.Printf("%d total, %d active, %d completed\n", stats.Total, stats.Active, stats.Completed)
	return exitSuccess
}

func cmdAdd(ctx context.Context, api *client.Client, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	desc := fs.String("desc", "", "description")
	priority := fs.String("priority", "", "LOW, MEDIUM or HIGH")
	due := fs.String("due", "", "due date, 2026-02-19 or RFC3339")
	if err := fs.Parse(args); err != nil {
		return exitUserError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: usage: todoctl add <title> [options]")
		return exitUserError
	}

	t, err := api.CreateTodo(ctx, client.CreateTodoInput{
		Title:       fs.Arg(0),
		Description: *desc,
		Priority:    strings.ToUpper(*priority),
		DueDate:     *due,
	})
	if err != nil {
		return apiFail(err)
	}
	fmt.Printf("Added %s  %s\n", t.ID[:8], t.Title)
	return exitSuccess
}

func cmdDone(ctx context.Context, api *client.Client, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "error: usage: todoctl done <id>")
		return exitUserError
	}
	done := true
	t, err := api.UpdateTodo(ctx, args[0], client.UpdateTodoInput{Completed: &done})
	if err != nil {
		return apiFail(err)
	}
	fmt.Printf("Done: %s\n", t.Title)
	return exitSuccess
}

func cmdRm(ctx context.Context, api *client.Client, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "error: usage: todoctl rm <id>")
		return exitUserError
	}
	if err := api.DeleteTodo(ctx, args[0]); err != nil {
		return apiFail(err)
	}
	fmt.Println("Deleted.")
	return exitSuccess
}

func cmdEdit(ctx context.Context, api *client.Client, args []string) int {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description (empty string clears)")
	priority := fs.String("priority", "", "LOW, MEDIUM or HIGH")
	due := fs.String("due", "", "new due date")
	clearDue := fs.Bool("clear-due", false, "remove the due date")
	reopen := fs.Bool("reopen", false, "mark not completed")
	if err := fs.Parse(args); err != nil {
		return exitUserError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: usage: todoctl edit <id> [options]")
		return exitUserError
	}

	var in client.UpdateTodoInput
	var badDue error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			in.Title = title
		case "desc":
			in.Description = desc
		case "priority":
			p := strings.ToUpper(*priority)
			in.Priority = &p
		case "due":
			parsed, err := parseDue(*due)
			if err != nil {
				badDue = err
				return
			}
			in.DueDate = &parsed
			in.DueDateSet = true
		case "clear-due":
			if *clearDue {
				in.DueDate = nil
				in.DueDateSet = true
			}
		case "reopen":
			if *reopen {
				active := false
				in.Completed = &active
			}
		}
	})
	if badDue != nil {
		fmt.Fprintf(os.Stderr, "error: -due: %v\n", badDue)
		return exitUserError
	}

	t, err := api.UpdateTodo(ctx, fs.Arg(0), in)
	if err != nil {
		return apiFail(err)
	}
	fmt.Printf("Updated: %s\n", t.Title)
	return exitSuccess
}

func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

func apiFail(err error) int {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == 401 {
		fmt.Fprintln(os.Stderr, "run `todoctl login <username>` first")
		return exitAuthError
	}
	return exitAPIError
}

// configDir follows XDG: $XDG_CONFIG_HOME/todoctl or $HOME/.config/todoctl.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "todoctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "todoctl"
	}
	return filepath.Join(home, ".config", "todoctl")
}

func sessionPath() string {
	return filepath.Join(configDir(), sessionFile)
}

func saveSession(id string) error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, sessionFile), []byte(id+"\n"), 0o600)
}
