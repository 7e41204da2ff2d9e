package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"golang.org/x/term"
)

// Prompter supplies interactive input for the login flow. It is an
// interface so the flow can be driven by a scripted implementation in
// tests instead of a real terminal.
type Prompter interface {
	Prompt(ctx context.Context, label string) (string, error)
	PromptSecret(ctx context.Context, label string) (string, error)
}

// FlowAuth implements gotd's auth.UserAuthenticator on top of a
// Prompter. Phone and 2FA password can be preconfigured; anything
// preconfigured is never prompted for.
type FlowAuth struct {
	prompter Prompter
	phone    string
	password string
}

func NewFlowAuth(p Prompter, phone, password string) *FlowAuth {
	return &FlowAuth{prompter: p, phone: phone, password: password}
}

func (a *FlowAuth) Phone(ctx context.Context) (string, error) {
	if a.phone != "" {
		return a.phone, nil
	}
	phone, err := a.prompter.Prompt(ctx, "Enter your phone number (with country code, e.g. +12345678900)")
	if err != nil {
		return "", err
	}
	a.phone = phone
	return phone, nil
}

// PhoneNumber returns the phone used for login, once known.
func (a *FlowAuth) PhoneNumber() string { return a.phone }

func (a *FlowAuth) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.prompter.Prompt(ctx, "Enter the code you received")
}

func (a *FlowAuth) Password(ctx context.Context) (string, error) {
	if a.password != "" {
		return a.password, nil
	}
	return a.prompter.PromptSecret(ctx, "Enter your 2FA password")
}

func (a *FlowAuth) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (a *FlowAuth) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up not supported")
}

// TerminalPrompter reads answers from an interactive terminal, hiding
// secret input.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

func (p *TerminalPrompter) Prompt(_ context.Context, label string) (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	fmt.Fprintf(p.Out, "%s: ", label)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *TerminalPrompter) PromptSecret(ctx context.Context, label string) (string, error) {
	f, ok := p.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Prompt(ctx, label)
	}
	fmt.Fprintf(p.Out, "%s: ", label)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}
