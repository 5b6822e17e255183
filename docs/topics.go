// Package docs embeds the curvecmp documentation topics.
//
// readme.md is the index: every "* name: summary" line declares a topic stored in name.md,
// and topics are listed in index order.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Topic is a documentation topic declared in the index.
type Topic struct {
	Name    string // file name without .md
	Title   string // first heading of the topic
	Summary string // as written in the index
}

var indexLine = regexp.MustCompile(`^\*\s+([^:]+):\s*(.*)$`)

// Index returns the topics declared in readme.md, in index order.
func Index() ([]Topic, error) {
	content, err := docs.ReadFile("readme.md")
	if err != nil {
		return nil, fmt.Errorf("reading topic index: %w", err)
	}
	var topics []Topic
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		m := indexLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		topic := Topic{Name: strings.TrimSpace(m[1]), Summary: strings.TrimSpace(m[2])}
		body, err := GetTopic(topic.Name)
		if err != nil {
			return nil, err
		}
		topic.Title = title(body, topic.Name)
		topics = append(topics, topic)
	}
	return topics, scanner.Err()
}

// title returns the first markdown heading of body, or name if it has none.
func title(body, name string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return name
}

// GetTopic returns the content of a documentation topic.
func GetTopic(topic string) (string, error) {
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found, run 'curvecmp topic' to list them", topic)
	}
	return string(content), nil
}

// GetTopics returns the content of multiple documentation topics concatenated together.
// "*" stands for every indexed topic.
func GetTopics(topics ...string) (string, error) {
	var b bytes.Buffer
	for _, topic := range topics {
		names := []string{topic}
		if topic == "*" {
			all, err := GetAllTopics()
			if err != nil {
				return "", err
			}
			names = all
		}
		for _, name := range names {
			content, err := GetTopic(name)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// GetAllTopics returns the names of the indexed topics, in index order.
func GetAllTopics() ([]string, error) {
	index, err := Index()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(index))
	for i, t := range index {
		names[i] = t.Name
	}
	return names, nil
}

// Overview returns the index as markdown: the introduction, then a table of the topics.
func Overview() (string, error) {
	content, err := docs.ReadFile("readme.md")
	if err != nil {
		return "", err
	}
	index, err := Index()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, line := range strings.Split(string(content), "\n") {
		if indexLine.MatchString(line) {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("| Topic | Title | Summary |\n|---|---|---|\n")
	for _, t := range index {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", t.Name, t.Title, t.Summary)
	}
	return b.String(), nil
}
