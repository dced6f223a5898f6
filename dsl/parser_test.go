package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/boxform/dsl"
)

const sampleDSL = `
// demo form
form Demo v1 {
  config {
    row-height: 38px
    margin: 2
    size-compare: area
  }

  button "Button1" name first

  horizontal {
    vertical {
      button "Button2-1"
      toggle "Enabled" value true
    }
    vertical {
      slider "Volume" value 0.5
      dropdown "Mode" value 1 {
        options: [
          "fast"
          "slow"
        ]
      }
    }
  }

  # equal split row
  horizontal equal { input "Name" value "${user.name}"; text { "Hello, ${user.name}!" } }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Demo" {
		t.Fatalf("expected form name Demo, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}
	stmts := doc.Body.Statements
	if len(stmts) != 4 {
		t.Fatalf("expected 4 top-level statements, got %d", len(stmts))
	}

	config := stmts[0].Command
	if config == nil || config.Name != "config" || config.Block == nil {
		t.Fatalf("expected config block, got %+v", stmts[0])
	}
	rowHeight := config.Block.Statements[0].Assignment
	if rowHeight == nil || rowHeight.Key != "row-height" || rowHeight.Value.Raw() != "38px" {
		t.Fatalf("unexpected row-height assignment: %+v", config.Block.Statements[0])
	}
	if got := config.Block.Statements[2].Assignment.Value.Raw(); got != "area" {
		t.Fatalf("expected size-compare ident area, got %q", got)
	}

	button := stmts[1].Command
	if button == nil || button.Name != "button" {
		t.Fatalf("expected button command, got %+v", stmts[1])
	}
	if got := lexemes(button.Args); got != "Button1 name first" {
		t.Fatalf("unexpected button args: %s", got)
	}
	if !button.Args[0].IsString() || button.Args[1].IsString() {
		t.Fatalf("argument types not preserved: %+v", button.Args)
	}
	if button.Block != nil {
		t.Fatalf("button should not capture the following block")
	}

	row := stmts[2].Command
	if row == nil || row.Name != "horizontal" || len(row.Block.Statements) != 2 {
		t.Fatalf("expected horizontal with two branches, got %+v", stmts[2])
	}
	right := row.Block.Statements[1].Command
	dropdown := right.Block.Statements[1].Command
	if dropdown == nil || dropdown.Name != "dropdown" || dropdown.Block == nil {
		t.Fatalf("expected dropdown with body, got %+v", right.Block.Statements[1])
	}
	options := dropdown.Block.Statements[0].Assignment
	if options == nil || options.Value.Array == nil {
		t.Fatalf("expected options array")
	}
	if got := strings.Join(options.Value.Strings(), "|"); got != "fast|slow" {
		t.Fatalf("unexpected options: %s", got)
	}

	equal := stmts[3].Command
	if equal == nil || lexemes(equal.Args) != "equal" {
		t.Fatalf("expected horizontal equal, got %+v", stmts[3])
	}
	if len(equal.Block.Statements) != 2 {
		t.Fatalf("expected input and text in equal row, got %d", len(equal.Block.Statements))
	}
	text := equal.Block.Statements[1].Command
	if text == nil || text.Block == nil || text.Block.Statements[0].Text == nil {
		t.Fatalf("text command missing literal content")
	}
	if got := string(text.Block.Statements[0].Text.Value); got != "Hello, ${user.name}!" {
		t.Fatalf("unexpected text literal %q", got)
	}
}

func TestParseReportsPosition(t *testing.T) {
	_, err := dsl.ParseFile("broken.form", strings.NewReader("form X {\n  button \"a\"\n"))
	if err == nil {
		t.Fatalf("expected error for unterminated block")
	}
	if !strings.Contains(err.Error(), "broken.form") {
		t.Fatalf("error should mention file name, got %v", err)
	}
}

func TestParseWithoutVersion(t *testing.T) {
	doc, err := dsl.ParseString(`form Minimal { text "hi" }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Version != "" || len(doc.Body.Statements) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func lexemes(parts []*dsl.Lexeme) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, " ")
}
