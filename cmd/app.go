// Package cmd implements the CLI application comparing investment strategies with benchmarks.
package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"html/template"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/curves"
	"github.com/etnz/curves/profile"
	"github.com/google/subcommands"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&compareCmd{}, "")
	c.Register(&serveCmd{}, "")
	c.Register(&profileCmd{}, "")

	c.Register(&eodhdCmd{}, "providers")
	c.Register(&inseeCmd{}, "providers")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var profileFile = flag.String("profile", os.Getenv(EnvProfile), "Path to the YAML comparison profile. Defaults to the "+EnvProfile+" environment variable.")

// Verbose enables logging of fetches and cache activity on stderr.
var Verbose = flag.Bool("v", false, "Verbose output: log fetches and cache activity on stderr")

// LoadProfile loads the profile selected by the -profile flag, or the default profile.
// Environment variables override the file.
func LoadProfile() (*profile.Profile, error) {
	if *profileFile == "" {
		return profile.Default().WithEnv(), nil
	}
	p, err := profile.Load(*profileFile)
	if err != nil {
		return nil, err
	}
	return p.WithEnv(), nil
}

// run fetches and computes the view of state. A nil selection selects every series.
// It also returns the names of every available series.
func run(ctx context.Context, pipeline *curves.Pipeline, state curves.DisplayState) (curves.View, []string, error) {
	set, table, err := pipeline.Load(ctx, state)
	if err != nil {
		return curves.View{}, nil, err
	}
	if state.Selection == nil {
		state.Selection = curves.SelectAll(set)
	}
	v, err := pipeline.Compute(set, table, state)
	return v, set.Names(), err
}

// printMarkdown renders markdown for the terminal, or prints it as is when it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 1em auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.2em 0.6em; text-align: right; }
</style>
</head>
<body>
{{if .Image}}<img src="{{.Image}}" alt="{{.Title}}" width="100%">
{{end}}{{.Body}}</body>
</html>
`))

// markdownToHTML converts a markdown report into a standalone HTML page.
// image, when not empty, is the chart to show above the report.
func markdownToHTML(title, md, image string) ([]byte, error) {
	converter := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := converter.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("converting report to html: %w", err)
	}
	var b bytes.Buffer
	err := page.Execute(&b, struct {
		Title, Image string
		Body         template.HTML
	}{title, image, template.HTML(body.String())})
	return b.Bytes(), err
}
