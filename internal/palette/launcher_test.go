package palette

import (
	"strings"
	"testing"
)

func TestRofiLine_UsesSingleNullSeparator(t *testing.T) {
	out := launchers["rofi"].line(Item{
		Label:     "────",
		IsDivider: true,
		Icon:      "folder",
	})

	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, out)
	}
	if !strings.Contains(out, "\x00nonselectable\x1ftrue") {
		t.Fatalf("expected nonselectable property, got %q", out)
	}
	if !strings.Contains(out, "\x1ficon\x1ffolder") {
		t.Fatalf("expected icon property after the first pair, got %q", out)
	}
	if !strings.Contains(out, "<span foreground='#666666'>") {
		t.Fatalf("expected dim span for divider, got %q", out)
	}
}

func TestRofiLine_EscapesFileNames(t *testing.T) {
	out := launchers["rofi"].line(Item{Label: "cats & <dogs>.png"})
	if out != "cats &amp; &lt;dogs&gt;.png" {
		t.Fatalf("expected markup-escaped label, got %q", out)
	}
}

func TestPlainLauncherLine(t *testing.T) {
	out := launchers["dmenu"].line(Item{Label: "a & b\nc", Icon: "folder", IsDivider: true})
	if out != "a & b c" {
		t.Fatalf("expected plain single-line label, got %q", out)
	}
}

func TestRofiArgs(t *testing.T) {
	rows := []Item{
		{Label: "Load Image", Action: "load"},
		{Label: "────", IsDivider: true},
		{Label: "Toggle Always On Top", Action: "top", IsActive: true},
	}
	args := launchers["rofi"].args("Image Overlay", "/home/me & co", rows)

	if !containsArgs(args, "-format", "i") || !containsArg(args, "-no-custom") {
		t.Fatalf("expected index output without custom entries, got %v", args)
	}
	if !containsArgs(args, "-a", "2") || !containsArgs(args, "-selected-row", "2") {
		t.Fatalf("expected active row 2 highlighted and selected, got %v", args)
	}
	if !containsArgs(args, "-p", "Image Overlay") || !containsArgs(args, "-mesg", "/home/me &amp; co") {
		t.Fatalf("expected prompt and escaped message, got %v", args)
	}
}

func TestOtherLauncherArgs(t *testing.T) {
	if args := launchers["dmenu"].args("Select Image", "ignored", nil); strings.Join(args, " ") != "-i -p Select Image" {
		t.Fatalf("unexpected dmenu args %v", args)
	}
	if args := launchers["fuzzel"].args("Select Image", "", nil); !containsArg(args, "--index") {
		t.Fatalf("expected fuzzel to print indices, got %v", args)
	}
	if args := launchers["wofi"].args("", "", nil); strings.Join(args, " ") != "--dmenu --allow-markup" {
		t.Fatalf("unexpected wofi args %v", args)
	}
}

func TestInitialRow(t *testing.T) {
	tests := []struct {
		name string
		rows []Item
		want int
		ok   bool
	}{
		{"first selectable", []Item{{IsDivider: true}, {Label: "a"}, {Label: "b"}}, 1, true},
		{"active wins", []Item{{Label: "a"}, {Label: "b", IsActive: true}}, 1, true},
		{"only dividers", []Item{{IsDivider: true}}, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := initialRow(tt.rows)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("initialRow = %d,%v, want %d,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseSelection(t *testing.T) {
	rows := []Item{
		{Label: "a", Action: "a"},
		{Label: "b", Action: "b"},
	}

	got, err := launchers["rofi"].parse("1", rows)
	if err != nil || got.Action != "b" {
		t.Fatalf("expected row 1, got %+v err=%v", got, err)
	}
	if _, err := launchers["fuzzel"].parse("7", rows); err == nil {
		t.Fatalf("expected out of range index rejected")
	}
	got, err = launchers["dmenu"].parse("a", rows)
	if err != nil || got.Action != "a" {
		t.Fatalf("expected label match, got %+v err=%v", got, err)
	}
}

func TestDisambiguateDuplicateLabels(t *testing.T) {
	rows := []Item{
		{Label: "Dup", Action: "a"},
		{Label: "────", IsDivider: true},
		{Label: "────", IsDivider: true},
		{Label: "Dup", Action: "b"},
	}

	disambiguate(rows)
	if rows[0].Label != "Dup" || rows[3].Label != "Dup (2)" {
		t.Fatalf("expected second Dup numbered, got %q and %q", rows[0].Label, rows[3].Label)
	}
	if rows[2].Label != "────" {
		t.Fatalf("expected dividers left alone, got %q", rows[2].Label)
	}
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func containsArgs(args []string, a string, b string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == a && args[i+1] == b {
			return true
		}
	}
	return false
}
