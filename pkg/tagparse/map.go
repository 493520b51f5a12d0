package tagparse

// Map converts parsed nodes to their generic map form, the shape produced by
// common XML-to-map converters: attribute keys carry AttributeNamePrefix,
// text content sits under TextNodeName, and repeated child tags collapse
// into a slice. Intended for debugging and CLI inspection; structured
// consumers should walk the Node tree directly.
func (p *Parser) Map(nodes []Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case Text:
			out = append(out, string(v))
		case *Element:
			out = append(out, map[string]any{v.Tag: p.elementMap(v)})
		}
	}
	return out
}

func (p *Parser) elementMap(el *Element) map[string]any {
	inner := make(map[string]any)
	for _, a := range el.Attrs {
		inner[p.opts.attrPrefix()+a.Name] = a.Value
	}
	var text string
	hasText := false
	for _, c := range el.Children {
		switch cv := c.(type) {
		case Text:
			text += string(cv)
			hasText = true
		case *Element:
			child := any(p.elementMap(cv))
			switch existing := inner[cv.Tag].(type) {
			case nil:
				inner[cv.Tag] = child
			case []any:
				inner[cv.Tag] = append(existing, child)
			default:
				inner[cv.Tag] = []any{existing, child}
			}
		}
	}
	if hasText || p.opts.AlwaysCreateTextNode {
		inner[p.opts.textNodeName()] = text
	}
	return inner
}
