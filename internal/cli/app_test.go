package cli

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/goodbrews/accounts/internal/accounts"
	"github.com/goodbrews/accounts/internal/common"
	"github.com/goodbrews/accounts/internal/logging"
	"github.com/goodbrews/accounts/internal/service"
)

type stubOps struct {
	registerIn  service.RegisterInput
	registerOut *accounts.Account
	registerErr error

	updateIn  service.UpdateInput
	updateOut *accounts.Account
	updateErr error

	loginOut *accounts.Account
	loginErr error

	findOut *accounts.Account
	findErr error
}

func (s *stubOps) Register(_ context.Context, in service.RegisterInput) (*accounts.Account, error) {
	s.registerIn = in
	return s.registerOut, s.registerErr
}

func (s *stubOps) Update(_ context.Context, in service.UpdateInput) (*accounts.Account, error) {
	s.updateIn = in
	return s.updateOut, s.updateErr
}

func (s *stubOps) Login(context.Context, string, string) (string, *accounts.Account, error) {
	return "token", s.loginOut, s.loginErr
}

func (s *stubOps) Find(context.Context, string) (*accounts.Account, error) {
	return s.findOut, s.findErr
}

func newTestApp(ops accountOps, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&out, nil)))
	a := NewApp(ops, logger)
	a.reader = bufio.NewReader(strings.NewReader(input))
	a.out = &out
	return a, &out
}

func TestRegisterCommand(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	passwords := []string{"supersecret", "supersecret"}
	readPassword = func(int) ([]byte, error) {
		pw := passwords[0]
		passwords = passwords[1:]
		return []byte(pw), nil
	}

	ops := &stubOps{registerOut: &accounts.Account{Username: "fred_jones", Email: "fred@goodbre.ws"}}
	a, out := newTestApp(ops, "fred_jones\nfred@goodbre.ws\nFred\n")

	a.register(context.Background())

	if ops.registerIn.Username != "fred_jones" || ops.registerIn.Email != "fred@goodbre.ws" {
		t.Fatalf("unexpected input: %+v", ops.registerIn)
	}
	if ops.registerIn.Password != "supersecret" || ops.registerIn.PasswordConfirmation != "supersecret" {
		t.Fatalf("passwords not forwarded: %+v", ops.registerIn)
	}
	if !strings.Contains(out.String(), "Created account fred_jones (/fred_jones)") {
		t.Fatalf("missing success output: %q", out.String())
	}
}

func TestRegisterCommand_PrintsEveryFailure(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) { return []byte("pw"), nil }

	f := accounts.NewFailures()
	f.Add("username", "is reserved")
	f.Add("email", "is invalid")
	f.Add("password", "must be longer than 6 characters")

	ops := &stubOps{registerErr: &accounts.ValidationError{Failures: f}}
	a, out := newTestApp(ops, "guest\nnope\n\n")

	a.register(context.Background())

	for _, want := range []string{"username is reserved", "email is invalid", "password must be longer than 6 characters"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing %q in output:\n%s", want, out.String())
		}
	}
}

func TestPasswdCommand_RequiresLogin(t *testing.T) {
	a, out := newTestApp(&stubOps{}, "")
	a.passwd(context.Background())
	if !strings.Contains(out.String(), "Log in first") {
		t.Fatalf("expected login notice, got %q", out.String())
	}
}

func TestRenameCommand(t *testing.T) {
	current := &accounts.Account{ID: "a-1", Username: "fred_jones", Email: "fred@goodbre.ws"}
	updated := &accounts.Account{ID: "a-1", Username: "fred_jones", Email: "fred@goodbre.ws", Name: "New Name"}
	ops := &stubOps{updateOut: updated}

	a, out := newTestApp(ops, "New Name\n")
	a.current = current

	a.rename(context.Background())

	if ops.updateIn.Name != "New Name" || ops.updateIn.PasswordChanged {
		t.Fatalf("unexpected update input: %+v", ops.updateIn)
	}
	if a.current != updated {
		t.Fatalf("current account not refreshed")
	}
	if !strings.Contains(out.String(), "Name updated") {
		t.Fatalf("missing success output: %q", out.String())
	}
}

func TestShowCommand_NotFound(t *testing.T) {
	ops := &stubOps{findErr: common.ErrNotFound}
	a, out := newTestApp(ops, "ghost\n")

	a.show(context.Background())

	if !strings.Contains(out.String(), "not found") {
		t.Fatalf("expected not found, got %q", out.String())
	}
}

func TestWhoami_PrintsAdminFlag(t *testing.T) {
	a, out := newTestApp(&stubOps{}, "")
	a.current = &accounts.Account{Username: "davidcelis", Email: "david@goodbre.ws"}

	a.whoami()

	if !strings.Contains(out.String(), "Admin:    yes") {
		t.Fatalf("expected admin flag, got %q", out.String())
	}
}

func TestRun_Quit(t *testing.T) {
	a, out := newTestApp(&stubOps{}, "quit\n")
	a.Run(context.Background())
	if !strings.Contains(out.String(), "Bye!") {
		t.Fatalf("expected goodbye, got %q", out.String())
	}
}
