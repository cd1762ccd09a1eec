package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  map[string]string
}

func (f *fakeExec) record(name string, arg string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string]string{}
	}
	f.args[name] = arg
	return nil
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }

func (f *fakeExec) Health(_ context.Context, a string) error  { return f.record("health", a) }
func (f *fakeExec) Balance(_ context.Context, a string) error { return f.record("balance", a) }
func (f *fakeExec) Ask(_ context.Context, a string) error     { return f.record("ask", a) }
func (f *fakeExec) Again(_ context.Context, a string) error   { return f.record("again", a) }
func (f *fakeExec) History(_ context.Context, a string) error { return f.record("history", a) }
func (f *fakeExec) Categories(_ context.Context, a string) error {
	return f.record("categories", a)
}
func (f *fakeExec) Correct(_ context.Context, a string) error  { return f.record("correct", a) }
func (f *fakeExec) Register(_ context.Context, a string) error { return f.record("register", a) }
func (f *fakeExec) Login(_ context.Context, a string) error {
	f.loggedIn = true
	return f.record("login", a)
}
func (f *fakeExec) Logout(_ context.Context, a string) error {
	f.loggedIn = false
	return f.record("logout", a)
}
func (f *fakeExec) Profile(_ context.Context, a string) error { return f.record("profile", a) }
func (f *fakeExec) UpdateProfile(_ context.Context, a string) error {
	return f.record("update", a)
}
func (f *fakeExec) DeleteAccount(_ context.Context, a string) error {
	return f.record("delete-account", a)
}
func (f *fakeExec) Status(_ context.Context, a string) error { return f.record("status", a) }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"balance H2 + O2 -> H2O",
		"",
		"ask",
		"again 3",
		"history",
		"categories",
		"correct water boils at 50C",
		"health",
		"profile",
		"update",
		"status",
		"delete-account",
		"logout",
		"register",
		"foobar",
		"exit",
		"history",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))

	require.Equal(t, []string{
		"login", "balance", "ask", "again", "history", "categories", "correct", "health",
		"profile", "update", "status", "delete-account", "logout", "register",
	}, exec.calls)
	require.Equal(t, "H2 + O2 -> H2O", exec.args["balance"])
	require.Equal(t, "3", exec.args["again"])
	require.Empty(t, exec.args["ask"])

	require.Contains(t, *out, helpSignedOut)
	require.Contains(t, *out, helpSignedIn)
	require.Contains(t, *out, "Unknown command: foobar")
	require.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_ShowsStatusInPrompt(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(alice)" }, bufio.NewReader(strings.NewReader("quit\n")))

	require.Equal(t, []string{"chem(alice)> ", "Bye!"}, *out)
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("history\nstatus")))

	require.Equal(t, []string{"history", "status"}, exec.calls)
}

func TestRunREPL_CommandsAreCaseInsensitive(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("HISTORY\nB NaCl\n")))

	require.Equal(t, []string{"history", "balance"}, exec.calls)
	require.Equal(t, "NaCl", exec.args["balance"])
}

func TestRunREPL_PassesTextAfterCommandAsTyped(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("balance   H2 +  O2\t-> H2O\r\n")))

	require.Equal(t, "H2 +  O2\t-> H2O", exec.args["balance"])
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line string
		cmd  string
		rest string
	}{
		{"history\n", "history", ""},
		{"  ask  what is  a mole?\n", "ask", "what is  a mole?"},
		{"b\tNaCl + H2O", "b", "NaCl + H2O"},
		{"   \n", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			cmd, rest := splitCommand(tc.line)
			require.Equal(t, tc.cmd, cmd)
			require.Equal(t, tc.rest, rest)
		})
	}
}
