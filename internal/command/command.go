package command

import (
	"fmt"
	"regexp"
	"strings"
)

// Type is the recognized operator command keyword.
type Type string

const (
	TypeSummary Type = "summary"
	TypeReview  Type = "review"
)

type Command struct {
	Type Type
}

// Parser recognizes operator commands embedded in free-text PR comments.
// The grammar is deliberately narrow: a leading "/" or "@" marker, the bot
// name, whitespace, then one of the literal keywords. Ordinary prose almost
// never matches, which keeps false positives out of the control channel.
type Parser struct {
	pattern *regexp.Regexp
}

func NewParser(botName string) *Parser {
	pattern := regexp.MustCompile(fmt.Sprintf(`^[/@]%s\s+(summary|review)`, regexp.QuoteMeta(strings.ToLower(botName))))
	return &Parser{pattern: pattern}
}

// Parse returns the command found at the start of the comment, or nil when
// the comment is ordinary conversation. Absence of a command is not an error.
func (p *Parser) Parse(comment string) *Command {
	normalized := strings.ToLower(strings.TrimSpace(comment))

	match := p.pattern.FindStringSubmatch(normalized)
	if match == nil {
		return nil
	}

	return &Command{Type: Type(match[1])}
}
