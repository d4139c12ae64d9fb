package xmltree

import "strings"

// Tree maps a tag name to the ordered children observed under that tag.
// A tag that appeared without content maps to an empty slice.
type Tree map[string][]Value

// Value is a single child of a tag: either leaf text or a nested subtree.
// Exactly one of the two is populated; a leaf has a nil Tree.
type Value struct {
	Text string
	Tree Tree
}

// Leaf wraps plain text as a Value.
func Leaf(text string) Value {
	return Value{Text: text}
}

// Subtree wraps a nested Tree as a Value.
func Subtree(t Tree) Value {
	return Value{Tree: t}
}

// IsLeaf reports whether the value is leaf text rather than a subtree.
func (v Value) IsLeaf() bool {
	return v.Tree == nil
}

// Parse converts an XML-like string into a Tree. Malformed input never
// produces an error; whatever cannot be interpreted simply does not appear
// in the result. Attributes on opening tags are discarded.
func Parse(s string) Tree {
	t := make(Tree)
	for s != "" {
		tag, content, rest := scanElement(s)
		s = rest
		content = strings.TrimSpace(content)

		// Register the tag even when there is nothing under it, so an
		// empty element is distinguishable from an absent one.
		if _, ok := t[tag]; !ok {
			t[tag] = []Value{}
		}

		if childTag, _, _ := scanElement(content); childTag != "" {
			t[tag] = append(t[tag], Subtree(Parse(content)))
		} else if content != "" {
			t[tag] = append(t[tag], Leaf(content))
		}
	}
	return t
}

// scanElement extracts the first complete element from x. It returns the tag
// name, the raw inner content, and the remainder of x after the closing tag.
//
// Special cases, in order:
//   - a leading <?...?> processing instruction is skipped
//   - a closing tag yields (tag, "", rest) so callers can note the tag
//   - content not starting with '<' is leaf text: ("", content, "")
//   - a self-closing tag yields the sentinel content "None"
//
// The closing tag is located by plain substring search, which is what makes
// the same-tag-nested-in-itself shape unparseable.
func scanElement(x string) (tag, content, rest string) {
	x = strings.TrimSpace(x)

	if strings.HasPrefix(x, "<?") {
		i := 2
		for i < len(x) && x[i] != '<' {
			i++
		}
		x = x[i:]
	}

	if strings.HasPrefix(x, "</") {
		i := 2
		inAttr := false
		var name strings.Builder
		for i < len(x) && x[i] != '>' {
			if x[i] == ' ' {
				inAttr = true
			}
			if !inAttr {
				name.WriteByte(x[i])
			}
			i++
		}
		if i < len(x) {
			rest = x[i+1:]
		}
		return strings.TrimSpace(name.String()), "", rest
	}

	if x == "" || x[0] != '<' {
		return "", x, ""
	}

	// Opening tag: the name runs to the first space, '/' or '>'.
	// Everything between the name and '>' is attributes, dropped here.
	i := 1
	nameDone := false
	var name strings.Builder
	for i < len(x) && x[i] != '>' {
		if x[i] == ' ' || x[i] == '/' {
			nameDone = true
		}
		if !nameDone {
			name.WriteByte(x[i])
		}
		i++
	}
	tag = name.String()
	if i >= len(x) {
		return tag, "", ""
	}
	selfClosing := i > 0 && x[i-1] == '/'
	body := x[i+1:]

	if selfClosing {
		// <tag/> stands in for <tag>None</tag>.
		return tag, "None", body
	}

	closing := "</" + tag + ">"
	end := strings.Index(body, closing)
	if end < 0 {
		return tag, body, ""
	}
	return tag, body[:end], body[end+len(closing):]
}

// Marshal serializes a Tree back to XML text. Sibling order under each tag
// is preserved; order across distinct tags is not. An empty child list
// serializes as one empty element so that Parse(Marshal(t)) reproduces t.
func Marshal(t Tree) string {
	var b strings.Builder
	for tag, children := range t {
		if len(children) == 0 {
			b.WriteString("<" + tag + "></" + tag + ">")
			continue
		}
		for _, child := range children {
			b.WriteString("<" + tag + ">")
			if child.IsLeaf() {
				b.WriteString(child.Text)
			} else {
				b.WriteString(Marshal(child.Tree))
			}
			b.WriteString("</" + tag + ">")
		}
	}
	return b.String()
}

// StripToXML removes any non-XML preamble from s. Each line is kept from its
// first '<' onward; lines without one (HTTP status line, headers, blank
// separators) are dropped. Used on raw SOAP responses that arrive with their
// HTTP framing still attached.
func StripToXML(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if idx := strings.IndexByte(line, '<'); idx >= 0 {
			b.WriteString(strings.TrimRight(line[idx:], "\r"))
		}
	}
	return b.String()
}

// Unescape replaces the XML entities devices commonly embed in SOAP
// responses with their literal characters.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	return s
}
