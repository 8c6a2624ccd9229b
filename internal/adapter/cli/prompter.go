package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/c-bata/go-prompt"
)

// Prompter asks the user for one line of input. It returns io.EOF when no
// more input will arrive.
type Prompter interface {
	Prompt(label string) (string, error)
}

// LinePrompter reads answers line by line, for pipes and scripts.
type LinePrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewLinePrompter creates a LinePrompter that echoes labels to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewScanner(in), out: out}
}

// Prompt implements Prompter.
func (p *LinePrompter) Prompt(label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", err
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(p.in.Text(), "\r"), nil
}

// TTYPrompter is an interactive prompt with history and metric name
// completion.
type TTYPrompter struct {
	names   func() []string
	history []string
}

// NewTTYPrompter creates a TTYPrompter completing from names.
func NewTTYPrompter(names func() []string) *TTYPrompter {
	return &TTYPrompter{names: names}
}

// Prompt implements Prompter.
func (p *TTYPrompter) Prompt(label string) (string, error) {
	line := prompt.Input(label, p.complete,
		prompt.OptionHistory(p.history),
		prompt.OptionPrefixTextColor(prompt.Turquoise),
	)
	if line != "" {
		p.history = append(p.history, line)
	}
	return line, nil
}

func (p *TTYPrompter) complete(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if word == "" {
		return nil
	}
	return Suggestions(p.names(), word)
}

// Suggestions returns the names starting with prefix, ignoring case.
func Suggestions(names []string, prefix string) []prompt.Suggest {
	s := make([]prompt.Suggest, len(names))
	for i, n := range names {
		s[i] = prompt.Suggest{Text: n}
	}
	return prompt.FilterHasPrefix(s, prefix, true)
}
