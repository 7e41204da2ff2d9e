package telegram

import (
	"context"
	"testing"
)

// scriptedPrompter feeds canned answers and records what was asked.
type scriptedPrompter struct {
	answers []string
	secrets []string
	asked   []string
}

func (p *scriptedPrompter) Prompt(_ context.Context, label string) (string, error) {
	p.asked = append(p.asked, label)
	next := p.answers[0]
	p.answers = p.answers[1:]
	return next, nil
}

func (p *scriptedPrompter) PromptSecret(_ context.Context, label string) (string, error) {
	p.asked = append(p.asked, label)
	next := p.secrets[0]
	p.secrets = p.secrets[1:]
	return next, nil
}

func TestFlowAuth_PhoneFromConfig(t *testing.T) {
	p := &scriptedPrompter{}
	a := NewFlowAuth(p, "+10000000000", "")

	phone, err := a.Phone(context.Background())
	if err != nil {
		t.Fatalf("Phone() error: %v", err)
	}
	if phone != "+10000000000" {
		t.Errorf("Phone() = %q, want +10000000000", phone)
	}
	if len(p.asked) != 0 {
		t.Errorf("configured phone must not prompt, asked: %v", p.asked)
	}
}

func TestFlowAuth_PhonePrompted(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"+10000000000"}}
	a := NewFlowAuth(p, "", "")

	phone, err := a.Phone(context.Background())
	if err != nil {
		t.Fatalf("Phone() error: %v", err)
	}
	if phone != "+10000000000" {
		t.Errorf("Phone() = %q, want +10000000000", phone)
	}
	if a.PhoneNumber() != "+10000000000" {
		t.Errorf("PhoneNumber() = %q, want prompted value retained", a.PhoneNumber())
	}
}

func TestFlowAuth_Code(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"12345"}}
	a := NewFlowAuth(p, "+10000000000", "")

	code, err := a.Code(context.Background(), nil)
	if err != nil {
		t.Fatalf("Code() error: %v", err)
	}
	if code != "12345" {
		t.Errorf("Code() = %q, want 12345", code)
	}
}

func TestFlowAuth_PasswordFromConfig(t *testing.T) {
	p := &scriptedPrompter{}
	a := NewFlowAuth(p, "+10000000000", "hunter2")

	pw, err := a.Password(context.Background())
	if err != nil {
		t.Fatalf("Password() error: %v", err)
	}
	if pw != "hunter2" {
		t.Errorf("Password() = %q, want hunter2", pw)
	}
}

func TestFlowAuth_PasswordPrompted(t *testing.T) {
	p := &scriptedPrompter{secrets: []string{"hunter2"}}
	a := NewFlowAuth(p, "+10000000000", "")

	pw, err := a.Password(context.Background())
	if err != nil {
		t.Fatalf("Password() error: %v", err)
	}
	if pw != "hunter2" {
		t.Errorf("Password() = %q, want hunter2", pw)
	}
}

func TestFlowAuth_SignUpRefused(t *testing.T) {
	a := NewFlowAuth(&scriptedPrompter{}, "", "")
	if _, err := a.SignUp(context.Background()); err == nil {
		t.Error("SignUp() should refuse")
	}
}
