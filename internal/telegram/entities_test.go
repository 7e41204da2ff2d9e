package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
)

func TestEntitiesToMarkdown_NoEntities(t *testing.T) {
	text := "Hello world"
	result := EntitiesToMarkdown(text, nil)
	if result != text {
		t.Errorf("expected %q, got %q", text, result)
	}
}

func TestEntitiesToMarkdown_Bold(t *testing.T) {
	// "Hello world" with "world" bold (offset=6, length=5)
	text := "Hello world"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityBold{Offset: 6, Length: 5},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Hello **world**"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_Italic(t *testing.T) {
	text := "Hello world"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityItalic{Offset: 6, Length: 5},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Hello *world*"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_Code(t *testing.T) {
	text := "Use fmt.Println here"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityCode{Offset: 4, Length: 11},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Use `fmt.Println` here"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_Pre(t *testing.T) {
	text := "func main() {}"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityPre{Offset: 0, Length: 14, Language: "go"},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "```go\nfunc main() {}\n```"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_Strike(t *testing.T) {
	text := "Hello world"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityStrike{Offset: 6, Length: 5},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Hello ~~world~~"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_TextURL(t *testing.T) {
	text := "Click here for info"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityTextURL{Offset: 6, Length: 4, URL: "https://example.com"},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Click [here](https://example.com) for info"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_PlainTextEntitiesUntouched(t *testing.T) {
	// Bare URLs, mentions, hashtags and emails are already readable
	// as-is; wrapping them only adds noise.
	text := "Hey @johndoe visit https://example.com or mail user@example.com #go"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityMention{Offset: 4, Length: 8},
		&tg.MessageEntityURL{Offset: 19, Length: 19},
		&tg.MessageEntityEmail{Offset: 47, Length: 16},
		&tg.MessageEntityHashtag{Offset: 64, Length: 3},
	}
	result := EntitiesToMarkdown(text, entities)
	if result != text {
		t.Errorf("expected text unchanged, got %q", result)
	}
}

func TestEntitiesToMarkdown_MultipleEntities(t *testing.T) {
	text := "Hello bold and italic world"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityBold{Offset: 6, Length: 4},
		&tg.MessageEntityItalic{Offset: 15, Length: 6},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Hello **bold** and *italic* world"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_NestedBoldItalic(t *testing.T) {
	// Whole text bold, "world" also italic.
	text := "Hello world"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityBold{Offset: 0, Length: 11},
		&tg.MessageEntityItalic{Offset: 6, Length: 5},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "**Hello *world***"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_Emoji(t *testing.T) {
	// 👋 is U+1F44B, two UTF-16 code units, so "world" starts at
	// UTF-16 offset 9 even though it is rune offset 8.
	text := "Hello 👋 world"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityBold{Offset: 9, Length: 5},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Hello 👋 **world**"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_Blockquote(t *testing.T) {
	text := "This is quoted"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityBlockquote{Offset: 0, Length: 14},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "> This is quoted"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_Spoiler(t *testing.T) {
	text := "spoiler ahead"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntitySpoiler{Offset: 8, Length: 5},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "spoiler ||ahead||"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_OutOfRangeClamped(t *testing.T) {
	text := "short"
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityBold{Offset: 0, Length: 50},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "**short**"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}
