package docs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	bashSetup    = "bash setup"
	bashRun      = "bash run"
	consoleCheck = "console check"
	bashCheck    = "bash check"
)

func TestIndex(t *testing.T) {
	index, err := Index()
	if err != nil {
		t.Fatalf("Index() = %v", err)
	}
	want := []Topic{
		{Name: "compare", Title: "Compare"},
		{Name: "serve", Title: "Serve"},
		{Name: "profile", Title: "Profile"},
		{Name: "providers", Title: "Providers"},
		{Name: "inflation", Title: "Inflation"},
	}
	if len(index) != len(want) {
		t.Fatalf("Index() = %+v, want %d topics", index, len(want))
	}
	for i, w := range want {
		if index[i].Name != w.Name || index[i].Title != w.Title {
			t.Errorf("Index()[%d] = %s %q, want %s %q", i, index[i].Name, index[i].Title, w.Name, w.Title)
		}
		if index[i].Summary == "" {
			t.Errorf("topic %q has no summary in readme.md", w.Name)
		}
	}
}

func TestIndex_ListsEveryFile(t *testing.T) {
	names, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatalf("failed to glob *.md: %v", err)
	}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".md")
		if name != "readme" && !slices.Contains(names, name) {
			t.Errorf("topic %q is not listed in docs/readme.md", name)
		}
	}
}

func TestGetTopics(t *testing.T) {
	all, err := GetTopics("*")
	if err != nil {
		t.Fatal(err)
	}
	// topics come in index order.
	last := -1
	for _, heading := range []string{"# Compare", "# Serve", "# Profile", "# Providers", "# Inflation"} {
		i := strings.Index(all, heading)
		if i <= last {
			t.Errorf("%q at %d, want after %d", heading, i, last)
		}
		last = i
	}

	if _, err := GetTopics("compare", "ledger"); err == nil || !strings.Contains(err.Error(), `"ledger"`) {
		t.Errorf("GetTopics(ledger) = %v, want a topic not found error", err)
	}
}

func TestOverview(t *testing.T) {
	got, err := Overview()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# curvecmp",
		"| `compare` | Compare | compare strategies and benchmarks, and export the curves. |",
		"| `inflation` | Inflation | adjust curves for inflation. |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Overview() does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "* compare:") {
		t.Errorf("Overview() repeats the raw index:\n%s", got)
	}
}

func TestCodeBlocks(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs curvecmp")
	}
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			runBlocks(t, file)
		})
	}
}

// HELPER

// Block represents a fenced code block in the markdown file.
type Block struct {
	Type    string
	Content string
	File    string
	Line    int
}

// buildCurvecmp builds the `curvecmp` command-line executable and returns the absolute
// path to the compiled binary. It uses a temporary directory for the build
// output.
func buildCurvecmp(t *testing.T, tmp string) string {
	t.Helper()

	output := filepath.Join(tmp, "curvecmp")

	buildCmd := exec.Command("go", "build", "-o", output, "../curvecmp/")
	err := buildCmd.Run()
	if err != nil {
		t.Fatalf("failed to build curvecmp command: %v", err)
	}

	return output
}

// parseMarkdown parses a markdown file and returns a list of Blocks.
func parseMarkdown(t *testing.T, file string) []*Block {
	t.Helper()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}

	mdParser := goldmark.DefaultParser()
	root := mdParser.Parse(text.NewReader(content))

	// Read all blocks.

	var blocks []*Block

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			if fcb.Info == nil {
				return ast.WalkContinue, nil
			}
			lang := string(fcb.Info.Segment.Value(content))

			// lang := string(fcb.Language(content))
			var blockContent strings.Builder
			for i := 0; i < fcb.Lines().Len(); i++ {
				line := fcb.Lines().At(i)
				blockContent.WriteString(string(line.Value(content)))
			}

			// Get the line number of the block
			startOffset := fcb.Info.Segment.Start

			switch lang {
			case bashCheck, bashSetup, bashRun, consoleCheck:
				blocks = append(blocks, &Block{
					Type:    lang,
					Content: blockContent.String(),
					File:    file,
					Line:    lineNumber(content, startOffset),
				})
			}
		}
		return ast.WalkContinue, nil
	})

	return blocks
}

// lineNumber computes the lineNumber for a given offset AST offset.
// the markdown parser we use does not support that feature so we
// have to implement it.
func lineNumber(source []byte, offset int) (lineNumber int) {
	newline := []byte{'\n'}
	// Create a slice of the source from the beginning to the node's offset.
	sourceToNode := source[:offset]

	// Count the number of newlines in that slice.
	lineCount := bytes.Count(sourceToNode, newline)

	// The line number is the number of newlines + 1.
	return lineCount + 1
}

// blockRunner defines all that is need to run a test for a block
type blockRunner struct {
	env            []string // env use to execute commands
	previousOutput string
	tmpFolder      string
}

func (r *blockRunner) runBlock(t *testing.T, block *Block) {
	t.Helper()

	// Check don't need execution.
	if block.Type == consoleCheck {
		want := strings.TrimSpace(block.Content)
		got := strings.TrimSpace(r.previousOutput)
		// replace tabs with spaces for consistent comparison
		got = strings.ReplaceAll(got, "\t", "        ")
		if want != got {
			// Print out the diffs in full text first, and in escaped text later.
			t.Errorf("%s:%d: output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q\n", block.File, block.Line, got, want, got, want)
		}
		return
	}
	// Create a new execution folder on a new setup.
	if block.Type == bashSetup {
		r.tmpFolder = t.TempDir() // new scenario temp folder
	}

	// Execute bash.
	cmd := exec.Command("bash", "-c", "set -e; "+block.Content)
	cmd.Dir = r.tmpFolder
	cmd.Env = r.env
	output, err := cmd.CombinedOutput()

	// Record last run output.
	if block.Type == bashRun {
		r.previousOutput = string(output)
	}

	// Handling bash errors.
	if err != nil {
		switch block.Type {
		case bashSetup, bashRun:
			t.Fatalf("%s:%d: %s failed: %v with output:\n%s\n", block.File, block.Line, block.Type, err, output)
		case bashCheck:
			t.Errorf("%s:%d: %s failed: %v with output:\n%s\n", block.File, block.Line, block.Type, err, output)
			return
		default:
			t.Fatalf("%s:%d: unknown block type: %s", block.File, block.Line, block.Type)
		}
	}
}

// runBlocks executes a series of scenarios extracted from a
// markdown file.
func runBlocks(t *testing.T, file string) {
	t.Helper()
	blocks := parseMarkdown(t, file)
	if len(blocks) == 0 {
		return
	}

	globalTmp := t.TempDir()
	binPath := buildCurvecmp(t, globalTmp)
	binDir := filepath.Dir(binPath)

	newPath := fmt.Sprintf("PATH=%s%c%s", binDir, os.PathListSeparator, os.Getenv("PATH"))
	// the scenarios run offline: no profile, no benchmark key from the environment.
	baseEnv := append(os.Environ(), newPath, "CURVES_PROFILE=", "EODHD_API_KEY=")

	r := blockRunner{
		env:       baseEnv,
		tmpFolder: t.TempDir(),
	}
	for _, block := range blocks {
		r.runBlock(t, block)
	}
}
