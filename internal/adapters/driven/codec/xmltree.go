package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

// plurals maps repeated OSCAL XML elements to their JSON array keys.
var plurals = map[string]string{
	"role":                    "roles",
	"party":                   "parties",
	"responsible-party":       "responsible-parties",
	"party-uuid":              "party-uuids",
	"email-address":           "email-addresses",
	"prop":                    "props",
	"link":                    "links",
	"system-id":               "system-ids",
	"information-type":        "information-types",
	"categorization":          "categorizations",
	"information-type-id":     "information-type-ids",
	"user":                    "users",
	"role-id":                 "role-ids",
	"component":               "components",
	"protocol":                "protocols",
	"port-range":              "port-ranges",
	"implemented-requirement": "implemented-requirements",
	"by-component":            "by-components",
	"statement":               "statements",
}

// markup elements hold prose with inline markup. They are flattened to text.
var markup = map[string]bool{
	"description": true,
	"remarks":     true,
}

// numericAttrs are attributes that are numbers in the JSON model.
var numericAttrs = map[string]bool{
	"port-range/start": true,
	"port-range/end":   true,
}

// chardataKeys names the key for an element's text when it also has
// attributes.
var chardataKeys = map[string]string{
	"system-id": "id",
}

type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode

	// text is the node's own character data; flat also includes every
	// descendant's, in document order.
	text strings.Builder
	flat strings.Builder
}

// decodeXML parses data into the JSON-shaped tree keyed by the root
// element's local name.
func decodeXML(data []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var root *xmlNode
	var stack []*xmlNode
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, attrs: t.Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			} else {
				return nil, errors.New("multiple root elements")
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			stack[len(stack)-1].text.Write(t)
			for _, n := range stack {
				n.flat.Write(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	if len(stack) > 0 {
		return nil, errors.New("unexpected end of document")
	}

	return map[string]any{root.name: convert(root)}, nil
}

func convert(n *xmlNode) any {
	if markup[n.name] {
		return flatten(n)
	}

	text := strings.TrimSpace(n.text.String())
	attrs := elementAttrs(n.attrs)
	if len(attrs) == 0 && len(n.children) == 0 {
		// An empty element is absent, whatever its JSON type.
		if text == "" {
			return nil
		}
		return text
	}

	out := make(map[string]any, len(attrs)+len(n.children))
	for _, a := range attrs {
		if numericAttrs[n.name+"/"+a.Name.Local] {
			if f, err := strconv.ParseFloat(a.Value, 64); err == nil {
				out[a.Name.Local] = f
				continue
			}
		}
		out[a.Name.Local] = a.Value
	}

	for _, c := range n.children {
		v := convert(c)
		if plural, ok := plurals[c.name]; ok {
			list, _ := out[plural].([]any)
			out[plural] = append(list, v)
			continue
		}
		out[c.name] = v
	}

	if text != "" {
		key := chardataKeys[n.name]
		if key == "" {
			key = "value"
		}
		out[key] = text
	}
	return out
}

// elementAttrs drops namespace declarations.
func elementAttrs(attrs []xml.Attr) []xml.Attr {
	out := attrs[:0:0]
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// flatten returns the text of a markup element. Block children are
// separated by blank lines.
func flatten(n *xmlNode) string {
	if len(n.children) == 0 {
		return strings.TrimSpace(n.text.String())
	}
	var blocks []string
	for _, c := range n.children {
		if s := strings.Join(strings.Fields(c.flat.String()), " "); s != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n")
}
