package askcmder

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/papercomputeco/novostroy/pkg/chatstream"
)

// streamPrinter writes the growing assistant answer to out, printing only
// the part that was not printed yet.
type streamPrinter struct {
	out     io.Writer
	printed string
}

func newStreamPrinter(out io.Writer) *streamPrinter {
	return &streamPrinter{out: out}
}

// Update is a client.Session update callback.
func (p *streamPrinter) Update(log []chatstream.Message) {
	if len(log) == 0 {
		return
	}
	last := log[len(log)-1]
	if last.Role != chatstream.RoleAssistant {
		return
	}
	p.write(visible(last.Content))
}

// Finish prints whatever is left of the final display text and ends the line.
func (p *streamPrinter) Finish(display string) {
	p.write(display)
	fmt.Fprintln(p.out)
}

// write prints the suffix of content past what was already printed. Content
// that no longer extends the printed text is skipped.
func (p *streamPrinter) write(content string) {
	if !strings.HasPrefix(content, p.printed) {
		return
	}
	if suffix := content[len(p.printed):]; suffix != "" {
		fmt.Fprint(p.out, suffix)
		p.printed = content
	}
}

// visible holds back an unclosed "[" at the end of content, which may be
// the start of an identifier marker that is removed once complete.
func visible(content string) string {
	i := strings.LastIndex(content, "[")
	if i < 0 || strings.Contains(content[i:], "]") {
		return content
	}
	return strings.TrimRightFunc(content[:i], unicode.IsSpace)
}
