package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/width"
)

// DefaultWidth is the wrap column used when Options.Width is unset.
const DefaultWidth = 100

// Options controls text output.
type Options struct {
	Width int // wrap column; negative disables wrapping
}

// WriteText writes v as plain terminal text.
func WriteText(w io.Writer, v View, opts Options) error {
	limit := opts.Width
	if limit == 0 {
		limit = DefaultWidth
	}

	bw := bufio.NewWriter(w)

	if v.Notice != "" {
		bw.WriteString("!! ")
		bw.WriteString(v.Notice)
		bw.WriteString("\n\n")
	}
	if v.Status != "" {
		bw.WriteString(v.Status)
		bw.WriteString("\n")
	}

	for _, t := range v.Tables {
		bw.WriteString("\n")
		writeTable(bw, t)
	}

	if v.ShowPreview {
		bw.WriteString("\n📄 ")
		bw.WriteString(PreviewTitle)
		bw.WriteString("\n")
		for _, line := range Wrap(v.Preview, limit) {
			bw.WriteString(line)
			bw.WriteString("\n")
		}
	}

	if v.Error != nil {
		bw.WriteString("\n")
		bw.WriteString(rule(v.Error.Title, limit))
		bw.WriteString("\n")
		if v.Error.Reason != "" {
			bw.WriteString(v.Error.Reason)
			bw.WriteString("\n\n")
		}
		for _, line := range Wrap(v.Error.Raw, limit) {
			bw.WriteString(line)
			bw.WriteString("\n")
		}
		bw.WriteString(rule("", limit))
		bw.WriteString("\n")
	}

	if actions := actionList(v.Controls); actions != "" {
		bw.WriteString("\nActions: ")
		bw.WriteString(actions)
		bw.WriteString("\n")
	}

	return bw.Flush()
}

func actionList(c Controls) string {
	var actions []string
	if c.SubmitEnabled {
		actions = append(actions, "submit")
	}
	if c.DownloadVisible {
		actions = append(actions, "export")
	}
	return strings.Join(actions, ", ")
}

func writeTable(bw *bufio.Writer, t Table) {
	bw.WriteString(t.Title)
	bw.WriteString("\n")

	var sb strings.Builder
	tw := tablewriter.NewWriter(&sb)
	tw.SetHeader([]string{"Name", "Value"})
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetBorder(false)
	tw.SetHeaderLine(true)
	tw.SetColumnSeparator("")
	tw.SetCenterSeparator("")
	tw.SetRowSeparator("-")
	tw.SetNoWhiteSpace(true)
	tw.SetTablePadding("  ")
	for _, r := range t.Rows {
		tw.Append([]string{r.Name, r.Value})
	}
	tw.Render()

	// the last column is padded; trim it so lines end at the value
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		bw.WriteString(strings.TrimRight(line, " "))
		bw.WriteString("\n")
	}
}

func rule(title string, limit int) string {
	n := limit
	if n <= 0 || n > 60 {
		n = 60
	}
	if title == "" {
		return strings.Repeat("─", n)
	}
	head := "── " + title + " "
	if pad := n - StringWidth(head); pad > 0 {
		head += strings.Repeat("─", pad)
	}
	return head
}

// Wrap splits text into display lines no wider than limit columns. Line
// breaks and runs of spaces are kept; lines break after a space where
// possible and inside a word when the word alone is too wide. CRLF counts
// as one line break: a bare carriage return would move the terminal cursor
// back over the line. The text itself is not modified, so exports keep it.
func Wrap(text string, limit int) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	if limit <= 0 {
		return lines
	}
	var out []string
	for _, line := range lines {
		out = append(out, wrapLine(line, limit)...)
	}
	return out
}

func wrapLine(line string, limit int) []string {
	runes := []rune(line)
	var out []string

	start, col, lastBreak := 0, 0, -1
	for i := 0; i < len(runes); i++ {
		w := runeWidth(runes[i], col)

		// a space that overflows stays at the end of the line
		if col+w > limit && runes[i] == ' ' {
			out = append(out, string(runes[start:i+1]))
			start, col, lastBreak = i+1, 0, -1
			continue
		}

		for col+w > limit && i > start {
			cut := i
			if lastBreak > start {
				cut = lastBreak
			}
			out = append(out, string(runes[start:cut]))
			start, lastBreak = cut, -1

			col = 0
			for j := start; j < i; j++ {
				col += runeWidth(runes[j], col)
			}
			w = runeWidth(runes[i], col)
		}

		col += w
		if runes[i] == ' ' || runes[i] == '\t' {
			lastBreak = i + 1
		}
	}
	return append(out, string(runes[start:]))
}

// StringWidth returns the number of terminal columns s occupies.
func StringWidth(s string) int {
	col := 0
	for _, r := range s {
		col += runeWidth(r, col)
	}
	return col
}

// runeWidth returns the columns r advances the cursor when printed at col.
func runeWidth(r rune, col int) int {
	switch {
	case r == '\t':
		return 8 - col%8
	case r < 0x20 || r == 0x7f:
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
