package tagparse

import (
	"regexp"
	"strings"
)

const (
	cdataStart = "<![CDATA["
	cdataEnd   = "]]>"
)

var (
	// openTagRe recognizes an opening or self-closing tag at the start of
	// the scan position. RE2 guarantees linear-time matching, so attribute
	// soup crafted to overlap quoting classes cannot blow up.
	openTagRe = regexp.MustCompile(`^<([A-Za-z_][A-Za-z0-9_.:-]*)((?:\s+[^\s=/>]+(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'>]+))?)*)\s*(/?)>`)

	closeTagRe = regexp.MustCompile(`^</\s*([A-Za-z_][A-Za-z0-9_.:-]*)\s*>`)

	attrRe = regexp.MustCompile(`([^\s=/>]+)(?:\s*=\s*("[^"]*"|'[^']*'|[^\s"'>]+))?`)
)

// Result is the parse of the accumulated buffer.
//
// Partial is true when the buffer may still be extended into a different
// tree: it ends mid-tag, mid-attribute, or inside an element (or stop-node
// or CDATA section) whose terminator has not appeared.
type Result struct {
	Nodes   []Node
	Partial bool
}

// Parser is an incremental tag-stream parser. One instance serves one
// in-flight stream; it is not safe for concurrent use.
type Parser struct {
	opts    Options
	stops   []*regexp.Regexp
	allowed map[string]struct{}
	buf     strings.Builder
}

// New creates a Parser. Invalid configuration (a malformed stop path) is a
// programmer error and fails here, never per-message.
func New(opts Options) (*Parser, error) {
	p := &Parser{opts: opts}
	for _, path := range opts.StopNodes {
		re, err := compileLiteralPath(path)
		if err != nil {
			return nil, err
		}
		p.stops = append(p.stops, re)
	}
	if len(opts.AllowedRootNodes) > 0 {
		p.allowed = make(map[string]struct{}, len(opts.AllowedRootNodes))
		for _, name := range opts.AllowedRootNodes {
			p.allowed[name] = struct{}{}
		}
	}
	return p, nil
}

// MustNew is New that panics on configuration errors.
func MustNew(opts Options) *Parser {
	p, err := New(opts)
	if err != nil {
		panic(err)
	}
	return p
}

// Feed appends chunk to the internal buffer and returns the parse of the
// whole accumulated buffer, not just the new chunk.
func (p *Parser) Feed(chunk string) Result {
	p.buf.WriteString(chunk)
	return p.parse(false)
}

// Flush forces end-of-stream closure of any open element and returns the
// final parse. Calling Flush repeatedly is idempotent. Elements whose
// closing tag never appeared are still reported Partial.
func (p *Parser) Flush() Result {
	return p.parse(true)
}

// Reset clears all state. Required between unrelated streams sharing one
// instance.
func (p *Parser) Reset() {
	p.buf.Reset()
}

// Buffer returns the raw accumulated input.
func (p *Parser) Buffer() string {
	return p.buf.String()
}

func (p *Parser) stopMatch(path string) bool {
	for _, re := range p.stops {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

type frame struct {
	el   *Element
	path string
}

type run struct {
	p       *Parser
	src     string
	eof     bool
	pos     int
	roots   []Node
	stack   []frame
	text    strings.Builder
	partial bool
}

func (p *Parser) parse(eof bool) Result {
	r := &run{p: p, src: p.buf.String(), eof: eof}
	r.scan()
	return Result{Nodes: r.roots, Partial: r.partial}
}

func (r *run) scan() {
	for r.pos < len(r.src) {
		lt := strings.IndexByte(r.src[r.pos:], '<')
		if lt < 0 {
			r.text.WriteString(r.src[r.pos:])
			r.pos = len(r.src)
			break
		}
		r.text.WriteString(r.src[r.pos : r.pos+lt])
		r.pos += lt

		rest := r.src[r.pos:]
		switch {
		case strings.HasPrefix(rest, cdataStart):
			r.scanCDATA(rest)
		case strings.HasPrefix(rest, "<!--"):
			r.stripConstruct(rest, 4, "-->")
		case strings.HasPrefix(rest, "<?"):
			r.stripConstruct(rest, 2, "?>")
		case strings.HasPrefix(rest, "<!"):
			r.stripConstruct(rest, 2, ">")
		case strings.HasPrefix(rest, "</"):
			r.scanCloseTag(rest)
		default:
			r.scanOpenTag(rest)
		}
	}

	// End of buffer: force-close anything still open.
	for len(r.stack) > 0 {
		r.closeTop(true)
		r.partial = true
	}
	r.flushText()
}

// scanCDATA consumes a CDATA section. The payload is taken verbatim with no
// tag interpretation; the markers are stripped from the text value.
func (r *run) scanCDATA(rest string) {
	end := strings.Index(rest[len(cdataStart):], cdataEnd)
	if end < 0 {
		r.text.WriteString(rest[len(cdataStart):])
		r.pos = len(r.src)
		r.partial = true
		return
	}
	r.text.WriteString(rest[len(cdataStart) : len(cdataStart)+end])
	r.pos += len(cdataStart) + end + len(cdataEnd)
}

// stripConstruct drops a declaration, comment or DOCTYPE up to its
// terminator, falling back to the nearest '>' when the proper terminator is
// missing. A truncated construct swallows the remainder of the buffer, so
// markup injected inside it can never reach the tree.
func (r *run) stripConstruct(rest string, skip int, term string) {
	if end := strings.Index(rest[skip:], term); end >= 0 {
		r.pos += skip + end + len(term)
		return
	}
	if end := strings.IndexByte(rest[skip:], '>'); end >= 0 {
		r.pos += skip + end + 1
		return
	}
	r.pos = len(r.src)
	if !r.eof {
		r.partial = true
	}
}

func (r *run) scanCloseTag(rest string) {
	m := closeTagRe.FindStringSubmatch(rest)
	if m == nil {
		r.scanLooseAngle(rest)
		return
	}
	if len(r.stack) == 0 {
		// Stray closing tag at top level stays literal text.
		r.text.WriteString(m[0])
		r.pos += len(m[0])
		return
	}
	idx := r.findOpen(m[1])
	if idx < 0 {
		// No matching open element: literal text.
		r.text.WriteString(m[0])
		r.pos += len(m[0])
		return
	}
	// Recover from missing closing tags of inner elements, then close the
	// matching one. Recovery closes are not partial: the element can no
	// longer be extended.
	for len(r.stack) > idx {
		r.closeTop(false)
	}
	r.pos += len(m[0])
}

func (r *run) scanOpenTag(rest string) {
	m := openTagRe.FindStringSubmatch(rest)
	if m == nil {
		r.scanLooseAngle(rest)
		return
	}
	name := m[1]

	if len(r.stack) == 0 && r.p.allowed != nil {
		if _, ok := r.p.allowed[name]; !ok {
			// Not an allowed root: the whole tag is literal text. This is
			// what keeps narrative HTML out of the tree.
			r.text.WriteString(m[0])
			r.pos += len(m[0])
			return
		}
	}

	r.flushText()
	el := &Element{Tag: name, Attrs: parseAttrs(m[2])}
	path := name
	if len(r.stack) > 0 {
		path = r.stack[len(r.stack)-1].path + "." + name
	}
	r.pos += len(m[0])

	if m[3] == "/" {
		if r.p.opts.AlwaysCreateTextNode {
			el.Children = append(el.Children, Text(""))
		}
		r.appendNode(el)
		return
	}

	if r.p.stopMatch(path) {
		value, consumed, terminated := scanStopContent(r.src[r.pos:], name)
		el.Children = []Node{Text(value)}
		r.pos += consumed
		if !terminated {
			el.Partial = true
			r.partial = true
		}
		r.appendNode(el)
		return
	}

	r.appendNode(el)
	r.stack = append(r.stack, frame{el: el, path: path})
}

// scanLooseAngle handles a '<' that did not form a recognizable construct.
// If the buffer ends inside what could still become a tag, the remainder is
// held as partial text; otherwise the '<' is a literal character.
func (r *run) scanLooseAngle(rest string) {
	if strings.IndexByte(rest, '>') < 0 && looksLikeTagStart(rest) {
		r.text.WriteString(rest)
		r.pos = len(r.src)
		if !r.eof {
			r.partial = true
		}
		return
	}
	r.text.WriteByte('<')
	r.pos++
}

func looksLikeTagStart(rest string) bool {
	if len(rest) == 1 {
		return true
	}
	c := rest[1]
	return c == '/' || c == '!' || c == '?' || c == '_' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func (r *run) findOpen(name string) int {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].el.Tag == name {
			return i
		}
	}
	return -1
}

func (r *run) flushText() {
	if r.text.Len() == 0 {
		return
	}
	r.appendNode(Text(r.text.String()))
	r.text.Reset()
}

func (r *run) appendNode(n Node) {
	if len(r.stack) > 0 {
		top := r.stack[len(r.stack)-1].el
		top.Children = append(top.Children, n)
		return
	}
	if t, ok := n.(Text); ok && len(r.roots) > 0 {
		if prev, ok := r.roots[len(r.roots)-1].(Text); ok {
			r.roots[len(r.roots)-1] = prev + t
			return
		}
	}
	r.roots = append(r.roots, n)
}

func (r *run) closeTop(partial bool) {
	r.flushText()
	fr := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	if r.p.opts.AlwaysCreateTextNode && !hasTextChild(fr.el) {
		fr.el.Children = append(fr.el.Children, Text(""))
	}
	if partial {
		fr.el.Partial = true
	}
}

func hasTextChild(el *Element) bool {
	for _, c := range el.Children {
		if _, ok := c.(Text); ok {
			return true
		}
	}
	return false
}

// scanStopContent consumes the content of a stop node: everything up to the
// matching closing tag is one literal value. Same-named nested opens are
// depth-counted so an inner pair cannot terminate the scan early, and text
// inside CDATA sections never terminates it at all (the markers themselves
// are stripped from the value).
func scanStopContent(s, tag string) (value string, consumed int, terminated bool) {
	var val strings.Builder
	depth := 0
	i := 0
	for i < len(s) {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			val.WriteString(s[i:])
			return val.String(), len(s), false
		}
		val.WriteString(s[i : i+lt])
		i += lt
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, cdataStart):
			end := strings.Index(rest[len(cdataStart):], cdataEnd)
			if end < 0 {
				val.WriteString(rest[len(cdataStart):])
				return val.String(), len(s), false
			}
			val.WriteString(rest[len(cdataStart) : len(cdataStart)+end])
			i += len(cdataStart) + end + len(cdataEnd)
		case strings.HasPrefix(rest, "</"):
			m := closeTagRe.FindStringSubmatch(rest)
			if m != nil && m[1] == tag {
				if depth == 0 {
					return val.String(), i + len(m[0]), true
				}
				depth--
				val.WriteString(m[0])
				i += len(m[0])
				continue
			}
			val.WriteByte('<')
			i++
		default:
			m := openTagRe.FindStringSubmatch(rest)
			if m != nil && m[1] == tag {
				if m[3] != "/" {
					depth++
				}
				val.WriteString(m[0])
				i += len(m[0])
				continue
			}
			val.WriteByte('<')
			i++
		}
	}
	return val.String(), len(s), false
}

func parseAttrs(s string) []Attr {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var attrs []Attr
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		name, raw := m[1], m[2]
		value := raw
		if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') {
			value = raw[1 : len(raw)-1]
		}
		attrs = append(attrs, Attr{Name: name, Value: value})
	}
	return attrs
}
