package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goodbrews/accounts/internal/accounts"
	"github.com/goodbrews/accounts/internal/logging"
	"github.com/goodbrews/accounts/internal/service"
)

// accountOps is the command surface the console needs. The real
// service.AccountService satisfies it; tests provide a stub.
type accountOps interface {
	Register(ctx context.Context, in service.RegisterInput) (*accounts.Account, error)
	Update(ctx context.Context, in service.UpdateInput) (*accounts.Account, error)
	Login(ctx context.Context, username, password string) (string, *accounts.Account, error)
	Find(ctx context.Context, username string) (*accounts.Account, error)
}

type App struct {
	ops     accountOps
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	current *accounts.Account
}

func NewApp(ops accountOps, logger logging.Logger) *App {
	return &App{
		ops:    ops,
		logger: logger.With("module", "cli"),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	return a.current != nil
}

func (a *App) prompt() string {
	if a.isLoggedIn() {
		return fmt.Sprintf("accounts (%s)> ", a.current.Username)
	}
	return "accounts> "
}

// Run starts the read-eval-print loop. It exits on EOF, on "quit", or
// when ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "accounts admin console (type 'help' for commands)")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fmt.Fprint(a.out, a.prompt())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "help":
			fmt.Fprintln(a.out, "Available commands: register, login, passwd, rename, whoami, show, quit")
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "passwd":
			a.passwd(ctx)
		case "rename":
			a.rename(ctx)
		case "whoami":
			a.whoami()
		case "show":
			a.show(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintf(a.out, "Unknown command: %s\n", line)
		}
	}
}

func (a *App) register(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return
	}
	name, err := GetSimpleText(a.reader, "Name (optional)", a.out)
	if err != nil {
		return
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return
	}
	confirmation, err := GetPassword("Confirm password", a.out)
	if err != nil {
		return
	}

	account, err := a.ops.Register(ctx, service.RegisterInput{
		Username:             username,
		Email:                email,
		Name:                 name,
		Password:             password,
		PasswordConfirmation: confirmation,
	})
	if err != nil {
		a.reportError(err)
		return
	}

	fmt.Fprintf(a.out, "Created account %s (/%s)\n", account.Username, account.Slug())
}

func (a *App) login(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return
	}

	_, account, err := a.ops.Login(ctx, username, password)
	if err != nil {
		a.reportError(err)
		return
	}

	a.current = account
	fmt.Fprintf(a.out, "Logged in as %s\n", account.Username)
}

func (a *App) passwd(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log in first")
		return
	}

	password, err := GetPassword("New password", a.out)
	if err != nil {
		return
	}
	confirmation, err := GetPassword("Confirm new password", a.out)
	if err != nil {
		return
	}

	account, err := a.ops.Update(ctx, service.UpdateInput{
		ID:                   a.current.ID,
		Username:             a.current.Username,
		Email:                a.current.Email,
		Name:                 a.current.Name,
		Password:             password,
		PasswordConfirmation: confirmation,
		PasswordChanged:      true,
	})
	if err != nil {
		a.reportError(err)
		return
	}

	a.current = account
	fmt.Fprintln(a.out, "Password changed")
}

func (a *App) rename(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log in first")
		return
	}

	name, err := GetSimpleText(a.reader, "New name", a.out)
	if err != nil {
		return
	}

	account, err := a.ops.Update(ctx, service.UpdateInput{
		ID:       a.current.ID,
		Username: a.current.Username,
		Email:    a.current.Email,
		Name:     name,
	})
	if err != nil {
		a.reportError(err)
		return
	}

	a.current = account
	fmt.Fprintln(a.out, "Name updated")
}

func (a *App) whoami() {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return
	}
	a.printAccount(a.current)
}

func (a *App) show(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return
	}

	account, err := a.ops.Find(ctx, username)
	if err != nil {
		a.reportError(err)
		return
	}
	a.printAccount(account)
}

func (a *App) printAccount(account *accounts.Account) {
	fmt.Fprintf(a.out, "Username: %s\n", account.Username)
	fmt.Fprintf(a.out, "Email:    %s\n", account.Email)
	if account.Name != "" {
		fmt.Fprintf(a.out, "Name:     %s\n", account.Name)
	}
	fmt.Fprintf(a.out, "Slug:     %s\n", account.Slug())
	if account.IsAdmin() {
		fmt.Fprintln(a.out, "Admin:    yes")
	}
}

// reportError prints a rejected candidate's full failure set, one line
// per field and message; any other error is printed as-is.
func (a *App) reportError(err error) {
	var vErr *accounts.ValidationError
	if errors.As(err, &vErr) {
		for _, field := range vErr.Failures.Fields() {
			for _, msg := range vErr.Failures.On(field) {
				fmt.Fprintf(a.out, "%s %s\n", field, msg)
			}
		}
		return
	}
	fmt.Fprintln(a.out, err.Error())
}
