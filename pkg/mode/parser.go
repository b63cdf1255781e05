package mode

import (
	"context"
	"strings"
	"unicode"
)

// State is the parser's verdict for one message.
type State int

const (
	NoCommand State = iota
	DirectInstruction
	ReplyDerivedInstruction
)

func (s State) String() string {
	switch s {
	case DirectInstruction:
		return "direct"
	case ReplyDerivedInstruction:
		return "reply"
	default:
		return "none"
	}
}

// Command is the parsed form of an inbound message.
type Command struct {
	State       State
	Mode        Mode
	Instruction string
	MentionID   string
}

// HasMode reports whether a mode was selected.
func (c Command) HasMode() bool {
	return c.State != NoCommand
}

// ReferenceLookup fetches the content of the message being replied to.
// ok is false when there is none or it cannot be fetched.
type ReferenceLookup func(ctx context.Context) (content string, ok bool)

// Parser recognizes "<mention> <trigger>: <text>" and "<mention> <trigger>".
type Parser struct {
	catalog  *Catalog
	username string
}

// NewParser creates a new mode parser. A non-empty username also accepts
// "@username" as the leading mention.
func NewParser(catalog *Catalog, username string) *Parser {
	return &Parser{
		catalog:  catalog,
		username: strings.TrimPrefix(strings.TrimSpace(username), "@"),
	}
}

// Parse runs the command FSM over content. lookup is consulted at most once
// and only when the message matches the reply form.
func (p *Parser) Parse(ctx context.Context, content string, lookup ReferenceLookup) Command {
	content = strings.TrimSpace(content)
	none := Command{State: NoCommand, Instruction: content}

	s := scanner{input: content}

	// 1. leading mention
	mentionID, ok := s.mention(p.username)
	if !ok {
		return none
	}

	// 2. at least one whitespace
	if s.spaces() == 0 {
		return none
	}

	// 3. trigger word
	m, ok := p.catalog.ByTrigger(s.word())
	if !ok {
		return none
	}

	// 4a. direct form: colon then non-empty remainder
	if s.peek() == ':' {
		s.pos++
		instruction := strings.TrimSpace(s.rest())
		if instruction == "" {
			return none
		}
		return Command{State: DirectInstruction, Mode: m, Instruction: instruction, MentionID: mentionID}
	}

	// 4b. reply form: nothing but whitespace after the trigger
	s.spaces()
	if !s.done() || lookup == nil {
		return none
	}
	referenced, ok := lookup(ctx)
	if !ok {
		return none
	}
	return Command{State: ReplyDerivedInstruction, Mode: m, Instruction: strings.TrimSpace(referenced), MentionID: mentionID}
}

// StripMention removes a leading mention and reports whether one was present.
func (p *Parser) StripMention(content string) (string, bool) {
	s := scanner{input: strings.TrimSpace(content)}
	if _, ok := s.mention(p.username); !ok {
		return s.input, false
	}
	return strings.TrimSpace(s.rest()), true
}

// scanner is the tokenizer half of the parser. Every method consumes input
// from pos only on success.
type scanner struct {
	input string
	pos   int
}

func (s *scanner) done() bool { return s.pos >= len(s.input) }

func (s *scanner) rest() string { return s.input[s.pos:] }

func (s *scanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.input[s.pos]
}

// mention consumes "<@123>", "<@!123>" or "@username".
func (s *scanner) mention(username string) (string, bool) {
	rest := s.rest()

	if strings.HasPrefix(rest, "<@") {
		i := 2
		if i < len(rest) && rest[i] == '!' {
			i++
		}
		start := i
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == start || i >= len(rest) || rest[i] != '>' {
			return "", false
		}
		s.pos += i + 1
		return rest[start:i], true
	}

	if username != "" && len(rest) > len(username) && rest[0] == '@' &&
		strings.EqualFold(rest[1:1+len(username)], username) {
		next := 1 + len(username)
		if next < len(rest) && !unicode.IsSpace(rune(rest[next])) {
			return "", false
		}
		s.pos += next
		return username, true
	}
	return "", false
}

func (s *scanner) spaces() int {
	n := 0
	for !s.done() && unicode.IsSpace(rune(s.input[s.pos])) {
		s.pos++
		n++
	}
	return n
}

// word consumes a run of letters and hyphens.
func (s *scanner) word() string {
	start := s.pos
	for !s.done() {
		c := s.input[s.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' {
			s.pos++
			continue
		}
		break
	}
	return s.input[start:s.pos]
}
