package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText word-wraps s so that no line exceeds width display columns.
// Words wider than width are broken across lines. Blank input yields no
// lines. A width <= 0 disables wrapping.
func wrapText(s string, width int) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(strings.Fields(s), " ")}
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var line string
		for _, word := range strings.Fields(para) {
			for runewidth.StringWidth(word) > width {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				head := truncateWidth(word, width)
				lines = append(lines, head)
				word = word[len(head):]
			}
			switch {
			case word == "":
			case line == "":
				line = word
			case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// truncateWidth returns the longest prefix of s that fits in width columns,
// and at least one rune.
func truncateWidth(s string, width int) string {
	head := runewidth.Truncate(s, width, "")
	if head == "" {
		// A single rune wider than width still has to be emitted.
		r := []rune(s)
		head = string(r[0])
	}
	return head
}
