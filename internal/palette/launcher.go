package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// launcher drives a dmenu-compatible program over stdin and stdout.
type launcher struct {
	command string
	// markup launchers render labels as pango markup.
	markup bool
	// indexed launchers print the chosen row number rather than its text.
	indexed bool
}

var launchers = map[string]launcher{
	"rofi":   {command: "rofi", markup: true, indexed: true},
	"fuzzel": {command: "fuzzel", indexed: true},
	"wofi":   {command: "wofi", markup: true},
	"dmenu":  {command: "dmenu"},
}

func (l launcher) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	rows := make([]Item, len(items))
	copy(rows, items)
	if !l.indexed {
		disambiguate(rows)
	}

	cmd := exec.Command(l.command, l.args(prompt, message, rows)...)
	cmd.Stdin = strings.NewReader(l.input(rows))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parse(selection, rows)
}

func (l launcher) args(prompt, message string, rows []Item) []string {
	switch l.command {
	case "rofi":
		args := []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active []string
		for i, r := range rows {
			if r.IsActive && !r.IsDivider {
				active = append(active, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
		}
		if row, ok := initialRow(rows); ok {
			args = append(args, "-selected-row", strconv.Itoa(row))
		}
		if message != "" {
			args = append(args, "-mesg", html.EscapeString(message))
		}
		return args
	case "fuzzel":
		args := []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt+": ")
		}
		return args
	case "wofi":
		args := []string{"--dmenu", "--allow-markup"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
		return args
	default:
		args := []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}
}

// initialRow is the row the cursor starts on: the first active row, else
// the first one that is not a divider.
func initialRow(rows []Item) (int, bool) {
	first := -1
	for i, r := range rows {
		if r.IsDivider {
			continue
		}
		if r.IsActive {
			return i, true
		}
		if first == -1 {
			first = i
		}
	}
	return first, first != -1
}

func (l launcher) input(rows []Item) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = l.line(r)
	}
	return strings.Join(lines, "\n")
}

// line encodes one row. rofi takes row properties after a single NUL as
// key\x1fvalue pairs.
func (l launcher) line(r Item) string {
	text := cleanLabel(r.Label)
	if l.markup {
		text = html.EscapeString(text)
		if r.IsDivider {
			text = "<span foreground='#666666'>" + text + "</span>"
		}
	}
	if l.command != "rofi" {
		return text
	}

	var props []string
	if r.IsDivider {
		props = append(props, "nonselectable", "true")
	}
	if r.Icon != "" {
		props = append(props, "icon", cleanField(r.Icon))
	}
	if len(props) == 0 {
		return text
	}
	return text + "\x00" + strings.Join(props, "\x1f")
}

func (l launcher) parse(selection string, rows []Item) (Item, error) {
	if l.indexed {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(rows) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return rows[idx], nil
		}
	}
	for _, r := range rows {
		if cleanLabel(r.Label) == selection {
			return r, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

// disambiguate numbers repeated labels so launchers that answer with the
// row text still identify a single row.
func disambiguate(rows []Item) {
	seen := make(map[string]int)
	for i := range rows {
		if rows[i].IsDivider {
			continue
		}
		key := cleanLabel(rows[i].Label)
		if key == "" {
			continue
		}
		if n := seen[key]; n > 0 {
			rows[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
		}
		seen[key]++
	}
}

func cleanLabel(label string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(label))
}

func cleanField(value string) string {
	return strings.TrimSpace(strings.NewReplacer("\x00", " ", "\x1f", " ", "\r", " ", "\n", " ").Replace(value))
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "nothing selected", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
