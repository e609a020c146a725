package course

import (
	"sort"
	"strings"
)

const (
	NodeCourse = "course"
	NodeTopic  = "topic"

	edgeCovers        = "covers"
	sectionDelimiter  = "##"
	maxNodeContentLen = 200
)

type Node struct {
	Label   string `json:"label"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Edge links two nodes by their zero-based index in Graph.Nodes
type Edge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// BuildGraph creates one course node per course and one topic node per
// "##" section heading, with a course→topic edge for each section.
// Courses are emitted in sorted order.
func BuildGraph(courses map[string]string) Graph {
	names := make([]string, 0, len(courses))
	for name := range courses {
		names = append(names, name)
	}
	sort.Strings(names)

	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	for _, name := range names {
		text := courses[name]
		sections := strings.Split(text, sectionDelimiter)

		courseIdx := len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			Label:   name,
			Type:    NodeCourse,
			Content: clip(strings.TrimSpace(sections[0])),
		})

		for _, section := range sections[1:] {
			heading, body, _ := strings.Cut(section, "\n")
			heading = strings.TrimSpace(strings.TrimLeft(heading, "#"))
			if heading == "" {
				continue
			}
			g.Edges = append(g.Edges, Edge{From: courseIdx, To: len(g.Nodes), Label: edgeCovers})
			g.Nodes = append(g.Nodes, Node{
				Label:   heading,
				Type:    NodeTopic,
				Content: clip(strings.TrimSpace(body)),
			})
		}
	}
	return g
}

func clip(s string) string {
	runes := []rune(s)
	if len(runes) <= maxNodeContentLen {
		return s
	}
	return string(runes[:maxNodeContentLen])
}
