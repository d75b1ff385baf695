// internal/capture/domscan/domscan.go

// Package domscan extracts form field metadata from an HTML fragment so the
// gateway's server-side capture path sees the same field shape the browser
// script produces.
package domscan

import (
	"strings"

	"golang.org/x/net/html"

	"lead-capture-workers/internal/capture"
	commonerrors "lead-capture-workers/internal/common/errors"
)

// ParseFields parses the fragment and returns the fields of the element with
// the given id (typically a <form>). An empty containerID scans the whole
// fragment. A containerID that matches nothing is a field access error: the
// caller asked for a container the page does not have.
func ParseFields(fragment string, containerID string) ([]capture.Field, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, commonerrors.NewFieldAccessError("unparseable html fragment: " + err.Error())
	}

	labels := map[string]string{}
	collectLabels(doc, labels)

	root := doc
	if containerID != "" {
		root = findByID(doc, containerID)
		if root == nil {
			return nil, commonerrors.NewFieldAccessError("container not found: " + containerID)
		}
	}

	fields := []capture.Field{}
	collectFields(root, labels, &fields)
	return fields, nil
}

func collectLabels(n *html.Node, labels map[string]string) {
	if n.Type == html.ElementNode && n.Data == "label" {
		if forID := attr(n, "for"); forID != "" {
			labels[forID] = strings.TrimSpace(textContent(n))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectLabels(c, labels)
	}
}

func collectFields(n *html.Node, labels map[string]string, out *[]capture.Field) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "input":
			*out = append(*out, capture.Field{
				Name:        attr(n, "name"),
				ID:          attr(n, "id"),
				Type:        inputType(n),
				Placeholder: attr(n, "placeholder"),
				Label:       labels[attr(n, "id")],
				Value:       attr(n, "value"),
				Disabled:    hasAttr(n, "disabled"),
			})
		case "textarea":
			*out = append(*out, capture.Field{
				Name:        attr(n, "name"),
				ID:          attr(n, "id"),
				Type:        "textarea",
				Placeholder: attr(n, "placeholder"),
				Label:       labels[attr(n, "id")],
				Value:       strings.TrimSpace(textContent(n)),
				Disabled:    hasAttr(n, "disabled"),
			})
		case "select":
			*out = append(*out, capture.Field{
				Name:     attr(n, "name"),
				ID:       attr(n, "id"),
				Type:     "select",
				Label:    labels[attr(n, "id")],
				Value:    selectedOption(n),
				Disabled: hasAttr(n, "disabled"),
			})
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectFields(c, labels, out)
	}
}

func inputType(n *html.Node) string {
	// Unspecified input type defaults to text, matching the browser.
	if t := attr(n, "type"); t != "" {
		return strings.ToLower(t)
	}
	return "text"
}

func selectedOption(n *html.Node) string {
	var first, selected string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "option" {
			continue
		}
		value := attr(c, "value")
		if value == "" {
			value = strings.TrimSpace(textContent(c))
		}
		if first == "" {
			first = value
		}
		if hasAttr(c, "selected") {
			selected = value
		}
	}
	if selected != "" {
		return selected
	}
	return first
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
