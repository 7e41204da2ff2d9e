package telegram

import (
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/gotd/td/tg"
)

// span is a markdown wrapper to apply over a UTF-16 offset range.
type span struct {
	offset int // UTF-16 code unit offset
	length int // UTF-16 code unit length
	open   string
	close  string
}

// EntitiesToMarkdown renders a message's formatting entities into
// markdown so the consuming agent sees bold, links and code blocks
// instead of bare text. Entities that are already legible in plain
// text (bare URLs, @mentions, hashtags, emails) are left untouched.
//
// Telegram entity offsets count UTF-16 code units, so the text is
// processed in UTF-16 and decoded back afterwards.
func EntitiesToMarkdown(text string, entities []tg.MessageEntityClass) string {
	if len(entities) == 0 {
		return text
	}

	spans := make([]span, 0, len(entities))
	for _, e := range entities {
		if s, ok := entitySpan(e); ok {
			spans = append(spans, s)
		}
	}
	if len(spans) == 0 {
		return text
	}

	// Longer spans first at equal offsets so nesting closes inside out.
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].offset != spans[j].offset {
			return spans[i].offset < spans[j].offset
		}
		return spans[i].length > spans[j].length
	})

	return applySpans(text, spans)
}

// entitySpan maps an entity to its markdown wrapper. Returns false for
// entity kinds that carry no formatting worth rendering.
func entitySpan(entity tg.MessageEntityClass) (span, bool) {
	offset := entity.GetOffset()
	length := entity.GetLength()

	switch e := entity.(type) {
	case *tg.MessageEntityBold:
		return span{offset, length, "**", "**"}, true
	case *tg.MessageEntityItalic:
		return span{offset, length, "*", "*"}, true
	case *tg.MessageEntityCode:
		return span{offset, length, "`", "`"}, true
	case *tg.MessageEntityPre:
		return span{offset, length, "```" + e.Language + "\n", "\n```"}, true
	case *tg.MessageEntityStrike:
		return span{offset, length, "~~", "~~"}, true
	case *tg.MessageEntityTextURL:
		return span{offset, length, "[", "](" + e.URL + ")"}, true
	case *tg.MessageEntityBlockquote:
		return span{offset, length, "> ", ""}, true
	case *tg.MessageEntitySpoiler:
		return span{offset, length, "||", "||"}, true
	default:
		return span{}, false
	}
}

// applySpans inserts the wrappers into the text at UTF-16 positions.
func applySpans(text string, spans []span) string {
	units := utf16.Encode([]rune(text))

	// Collect insertion markers for every open and close position.
	type marker struct {
		pos    int
		text   string
		isOpen bool
		index  int // span index, for stable nesting order
	}
	markers := make([]marker, 0, 2*len(spans))
	for i, s := range spans {
		end := s.offset + s.length
		if end > len(units) {
			end = len(units)
		}
		markers = append(markers,
			marker{pos: s.offset, text: s.open, isOpen: true, index: i},
			marker{pos: end, text: s.close, isOpen: false, index: i},
		)
	}

	// At equal positions: closings before openings, and closings in
	// reverse span order so the innermost wrapper closes first.
	sort.SliceStable(markers, func(i, j int) bool {
		if markers[i].pos != markers[j].pos {
			return markers[i].pos < markers[j].pos
		}
		if markers[i].isOpen != markers[j].isOpen {
			return !markers[i].isOpen
		}
		if !markers[i].isOpen {
			return markers[i].index > markers[j].index
		}
		return markers[i].index < markers[j].index
	})

	var b strings.Builder
	next := 0
	for i := 0; i <= len(units); i++ {
		for next < len(markers) && markers[next].pos <= i {
			b.WriteString(markers[next].text)
			next++
		}
		if i >= len(units) {
			break
		}
		if utf16.IsSurrogate(rune(units[i])) && i+1 < len(units) {
			b.WriteRune(utf16.DecodeRune(rune(units[i]), rune(units[i+1])))
			i++
		} else {
			b.WriteRune(rune(units[i]))
		}
	}
	return b.String()
}
