package rfcparse

import (
	"fmt"
	"strings"
)

func (m *matcher) traceEnter(name string, pos int) {
	if m.trace == nil {
		return
	}
	fmt.Fprintf(m.trace, "%s%s @ %d %q\n", strings.Repeat(" ", 2*len(m.stack)-2), name, pos, peek(m.input, pos))
}

func (m *matcher) traceExit(name string, pos, end int, ok bool) {
	if m.trace == nil {
		return
	}
	indent := strings.Repeat(" ", 2*len(m.stack))
	if ok {
		fmt.Fprintf(m.trace, "%s= %s %q\n", indent, name, m.input[pos:end])
	} else {
		fmt.Fprintf(m.trace, "%s! %s\n", indent, name)
	}
}

func peek(input string, pos int) string {
	const width = 10
	if pos >= len(input) {
		return ""
	}
	if pos+width > len(input) {
		return input[pos:]
	}
	return input[pos:pos+width] + "..."
}
