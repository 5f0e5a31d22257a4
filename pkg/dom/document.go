// Package dom is a small document model over golang.org/x/net/html with
// the element operations the navbar needs: lookup by id or CSS selector
// (compiled with cascadia), innerHTML and text replacement, class lists and
// event listeners.
package dom

import (
	"bytes"
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Handler reacts to a dispatched event
type Handler func(ctx context.Context) error

// Document is a parsed HTML document
type Document struct {
	root      *html.Node
	listeners map[*html.Node]map[string][]Handler
}

// Element is a handle on an element node of a Document
type Element struct {
	node *html.Node
	doc  *Document
}

// Parse parses a complete HTML document
func Parse(src string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse document")
	}
	return &Document{
		root:      root,
		listeners: make(map[*html.Node]map[string][]Handler),
	}, nil
}

// GetElementByID returns the first element with the given id, or nil
func (d *Document) GetElementByID(id string) *Element {
	n := findFirst(d.root, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
	return d.wrap(n)
}

// QuerySelector returns the first element matching selector, or nil
func (d *Document) QuerySelector(selector string) (*Element, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	return d.wrap(findFirst(d.root, sel.Match)), nil
}

// QuerySelectorAll returns all elements matching selector in document order
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	return d.wrapAll(findAll(d.root, sel.Match)), nil
}

// Render serializes the document
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", errors.Wrap(err, "failed to render document")
	}
	return buf.String(), nil
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{node: n, doc: d}
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// TagName returns the lower-case tag name
func (e *Element) TagName() string {
	return e.node.Data
}

// Attr returns the attribute value and whether it is present
func (e *Element) Attr(key string) (string, bool) {
	return attr(e.node, key)
}

// SetAttr sets or replaces an attribute
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// Classes returns the class list
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains name
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the class list unless already present
func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), name), " "))
}

// Text returns the concatenated text content
func (e *Element) Text() string {
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
	walk(e.node)
	return sb.String()
}

// SetText replaces all children with a single text node
func (e *Element) SetText(text string) {
	e.removeChildren()
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// SetInnerHTML replaces all children with the parsed fragment
func (e *Element) SetInnerHTML(src string) error {
	parent := &html.Node{Type: html.ElementNode, Data: e.node.Data, DataAtom: e.node.DataAtom}
	if parent.DataAtom == 0 {
		parent.DataAtom = atom.Lookup([]byte(e.node.Data))
	}
	nodes, err := html.ParseFragment(strings.NewReader(src), parent)
	if err != nil {
		return errors.Wrap(err, "failed to parse fragment")
	}
	e.removeChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// InnerHTML serializes the children
func (e *Element) InnerHTML() (string, error) {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", errors.Wrap(err, "failed to render fragment")
		}
	}
	return buf.String(), nil
}

// GetElementByID searches the subtree below the element
func (e *Element) GetElementByID(id string) *Element {
	n := findFirst(e.node, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return n != e.node && ok && v == id
	})
	return e.doc.wrap(n)
}

// QuerySelector searches the subtree below the element
func (e *Element) QuerySelector(selector string) (*Element, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	n := findFirst(e.node, func(n *html.Node) bool {
		return n != e.node && sel.Match(n)
	})
	return e.doc.wrap(n), nil
}

// QuerySelectorAll searches the subtree below the element
func (e *Element) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	nodes := findAll(e.node, func(n *html.Node) bool {
		return n != e.node && sel.Match(n)
	})
	return e.doc.wrapAll(nodes), nil
}

// AddEventListener registers h for event
func (e *Element) AddEventListener(event string, h Handler) {
	byEvent, ok := e.doc.listeners[e.node]
	if !ok {
		byEvent = make(map[string][]Handler)
		e.doc.listeners[e.node] = byEvent
	}
	byEvent[event] = append(byEvent[event], h)
}

// ListenerCount returns the number of handlers registered for event
func (e *Element) ListenerCount(event string) int {
	return len(e.doc.listeners[e.node][event])
}

// Dispatch runs the handlers registered for event in registration order
// and returns the first error.
func (e *Element) Dispatch(ctx context.Context, event string) error {
	var first error
	for _, h := range e.doc.listeners[e.node][event] {
		if err := h(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Click dispatches a click event
func (e *Element) Click(ctx context.Context) error {
	return e.Dispatch(ctx, "click")
}

func (e *Element) removeChildren() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		e.doc.forget(c)
		c = next
	}
}

// forget drops listeners of a detached subtree
func (d *Document) forget(n *html.Node) {
	delete(d.listeners, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	if n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
