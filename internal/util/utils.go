package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetContextLines formats up to two lines before errorLine plus errorLine
// itself, which is marked. Lines out of range yield an empty string.
func GetContextLines(src string, errorLine int) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	var result bytes.Buffer
	for i := max(1, errorLine-2); i <= errorLine; i++ {
		content := strings.TrimRight(lines[i-1], " \t")
		if i == errorLine {
			margin := fmt.Sprintf("  >  %3d | ", i)
			result.WriteString(margin + content + "\n")
			indent := len(content) - len(strings.TrimLeft(content, " \t"))
			result.WriteString(replaceVisibleWithSpaces(margin+content[:indent]) + "^ here")
		} else {
			fmt.Fprintf(&result, "     %3d | %s\n", i, content)
		}
	}
	return result.String()
}

// replaceVisibleWithSpaces keeps tabs so the caret lines up.
func replaceVisibleWithSpaces(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
