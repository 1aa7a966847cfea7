package css

import (
	"bytes"
	"maps"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	tdcss "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser tokenizes CSS text into Stylesheets using tdewolff/parse/v2's CSS
// tokenizer — the same low-level dependency the teacher's css.Parser wraps
// (css/parser.go) — but builds combinator-aware Selector chains instead of
// the teacher's single-ancestor-only Selector. order is a running counter
// carried across Parse calls, not reset per call, so that several sheets
// parsed by the same Parser (e.g. documentSheets's one instance per chunk,
// covering a linked stylesheet plus any number of inline <style> blocks)
// keep a single monotonic source-order sequence: css.Resolve's same-
// specificity tie-break compares Rule.Order across every sheet at a given
// cascade Level, so two sheets that each started back at zero would let an
// earlier rule in a later sheet wrongly outrank a later rule in an earlier
// one.
type Parser struct {
	log   *zap.Logger
	order int
}

// NewParser creates a CSS parser; a nil logger is replaced with a no-op one.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse tokenizes data into a Stylesheet. Unsupported at-rules (@media,
// @font-face, @import, …) are skipped with a debug log line: spec.md's
// Non-goals exclude the features they'd configure, so there is nothing
// meaningful to retain from them.
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := tdcss.NewParser(input, false)

	for {
		gt, _, tokData := parser.Next()

		switch gt {
		case tdcss.ErrorGrammar:
			return sheet

		case tdcss.BeginAtRuleGrammar:
			p.log.Debug("skipping at-rule block", zap.String("rule", string(tokData)))
			p.skipBlock(parser)

		case tdcss.AtRuleGrammar:
			p.log.Debug("skipping at-rule", zap.String("rule", string(tokData)))

		case tdcss.BeginRulesetGrammar, tdcss.QualifiedRuleGrammar:
			selectors := p.splitSelectors(tokData, parser.Values())
			props := p.parseDeclarations(parser)
			for _, raw := range selectors {
				sel, ok := p.parseSelector(raw)
				if !ok {
					sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+raw)
					continue
				}
				propsCopy := make(map[string]Value, len(props))
				maps.Copy(propsCopy, props)
				sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Properties: propsCopy, Order: p.order})
				p.order++
			}
		}
	}
}

// skipBlock consumes tokens until the matching end of an at-rule block, if
// it has one (e.g. "@import url(x);" has none).
func (p *Parser) skipBlock(parser *tdcss.Parser) {
	depth := 0
	for {
		gt, _, _ := parser.Next()
		switch gt {
		case tdcss.ErrorGrammar:
			return
		case tdcss.BeginAtRuleGrammar, tdcss.BeginRulesetGrammar:
			depth++
		case tdcss.EndAtRuleGrammar, tdcss.EndRulesetGrammar:
			if depth == 0 {
				return
			}
			depth--
		case tdcss.AtRuleGrammar, tdcss.DeclarationGrammar:
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) splitSelectors(data []byte, values []tdcss.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	var out []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (p *Parser) parseDeclarations(parser *tdcss.Parser) map[string]Value {
	props := make(map[string]Value)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case tdcss.ErrorGrammar, tdcss.EndRulesetGrammar:
			return props
		case tdcss.DeclarationGrammar:
			name := strings.ToLower(string(data))
			values := parser.Values()
			if len(values) > 0 {
				props[name] = p.parseValue(values)
			}
		}
	}
}

func (p *Parser) parseValue(tokens []tdcss.Token) Value {
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != tdcss.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))
	val := Value{Raw: raw}

	nonWS := make([]tdcss.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.TokenType != tdcss.WhitespaceToken {
			nonWS = append(nonWS, t)
		}
	}
	if len(nonWS) == 1 {
		t := nonWS[0]
		switch t.TokenType {
		case tdcss.DimensionToken:
			val.Number, val.Unit = parseDimension(string(t.Data))
		case tdcss.PercentageToken:
			val.Number, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case tdcss.NumberToken:
			val.Number, _ = strconv.ParseFloat(string(t.Data), 64)
		case tdcss.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case tdcss.StringToken:
			val.Keyword = unquote(string(t.Data))
		case tdcss.HashToken:
			val.Keyword = string(t.Data)
		default:
			val.Keyword = raw
		}
		return val
	}
	val.Keyword = raw
	return val
}

func parseDimension(s string) (float64, string) {
	end := 0
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' {
			end = i + 1
		} else {
			break
		}
	}
	if end == 0 {
		return 0, ""
	}
	n, _ := strconv.ParseFloat(s[:end], 64)
	return n, strings.ToLower(s[end:])
}

// parseSelector parses one comma-branch of a selector list into a Selector
// chain. Grammar covered: type/universal, #id, .class (repeatable),
// [attr] (presence only), :first-child, :last-child, :nth-child(an+b),
// joined by descendant (whitespace), child (>), adjacent sibling (+) and
// general sibling (~) combinators.
func (p *Parser) parseSelector(raw string) (Selector, bool) {
	fields := tokenizeSelector(raw)
	if len(fields) == 0 {
		return Selector{}, false
	}

	var compounds []Compound
	combinator := CombinatorNone
	i := 0
	for i < len(fields) {
		f := fields[i]
		switch f {
		case ">":
			combinator = CombinatorChild
			i++
			continue
		case "+":
			combinator = CombinatorAdjacentSibling
			i++
			continue
		case "~":
			combinator = CombinatorGeneralSibling
			i++
			continue
		}
		c, ok := parseCompound(f)
		if !ok {
			return Selector{}, false
		}
		c.Combinator = combinator
		compounds = append(compounds, c)
		combinator = CombinatorDescendant
		i++
	}
	if len(compounds) == 0 {
		return Selector{}, false
	}
	compounds[0].Combinator = CombinatorNone
	return Selector{Raw: raw, Compounds: compounds}, true
}

// tokenizeSelector splits a single selector string into simple-selector
// fields and bare combinator tokens, e.g. "div > p.note" -> ["div", ">",
// "p.note"].
func tokenizeSelector(raw string) []string {
	raw = strings.TrimSpace(raw)
	var fields []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range raw {
		switch r {
		case ' ', '\t', '\n':
			flush()
		case '>', '+', '~':
			flush()
			fields = append(fields, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}

// parseCompound parses one simple-selector field like
// "div#id.class1.class2[attr]:first-child".
func parseCompound(field string) (Compound, bool) {
	var c Compound
	i := 0
	n := len(field)

	readIdent := func() string {
		start := i
		for i < n && field[i] != '#' && field[i] != '.' && field[i] != '[' && field[i] != ':' {
			i++
		}
		return field[start:i]
	}

	if n == 0 {
		return c, false
	}
	if field[0] != '#' && field[0] != '.' && field[0] != '[' && field[0] != ':' {
		t := readIdent()
		if t != "*" {
			c.Type = t
		}
	}

	for i < n {
		switch field[i] {
		case '#':
			i++
			start := i
			for i < n && field[i] != '.' && field[i] != '[' && field[i] != ':' {
				i++
			}
			c.ID = field[start:i]
		case '.':
			i++
			start := i
			for i < n && field[i] != '.' && field[i] != '[' && field[i] != ':' {
				i++
			}
			c.Classes = append(c.Classes, field[start:i])
		case '[':
			end := strings.IndexByte(field[i:], ']')
			if end < 0 {
				return c, false
			}
			attr := field[i+1 : i+end]
			c.Attrs = append(c.Attrs, strings.TrimSpace(attr))
			i += end + 1
		case ':':
			i++
			start := i
			for i < n && field[i] != '.' && field[i] != '[' && field[i] != ':' && field[i] != '(' {
				i++
			}
			name := field[start:i]
			switch name {
			case "first-child":
				c.Pseudo = PseudoFirstChild
			case "last-child":
				c.Pseudo = PseudoLastChild
			case "nth-child":
				if i < n && field[i] == '(' {
					end := strings.IndexByte(field[i:], ')')
					if end < 0 {
						return c, false
					}
					arg := field[i+1 : i+end]
					a, b, ok := parseNth(arg)
					if !ok {
						return c, false
					}
					c.Pseudo = PseudoNthChild
					c.NthA, c.NthB = a, b
					i += end + 1
				} else {
					return c, false
				}
			default:
				return c, false
			}
		default:
			return c, false
		}
	}
	return c, true
}

// parseNth parses the an+b argument of :nth-child(), including the
// "odd"/"even" keywords.
func parseNth(arg string) (a, b int, ok bool) {
	arg = strings.ToLower(strings.ReplaceAll(arg, " ", ""))
	switch arg {
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	}
	if !strings.Contains(arg, "n") {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return 0, 0, false
		}
		return 0, n, true
	}
	parts := strings.SplitN(arg, "n", 2)
	aPart := parts[0]
	switch aPart {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		v, err := strconv.Atoi(aPart)
		if err != nil {
			return 0, 0, false
		}
		a = v
	}
	bPart := parts[1]
	if bPart == "" {
		b = 0
	} else {
		v, err := strconv.Atoi(bPart)
		if err != nil {
			return 0, 0, false
		}
		b = v
	}
	return a, b, true
}
