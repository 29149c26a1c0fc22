package page

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// DefaultBlockName is the name of the first block when its separator line is omitted.
const DefaultBlockName = "content"

// ErrInvalidPage is returned when page data cannot be parsed.
var ErrInvalidPage = errors.ValidationError("invalid page").Build()

var separatorLine = regexp.MustCompile(`^---((?:\s+[A-Za-z_]+:\S*)+)\s*$`)

// Options controls defaults applied while parsing.
type Options struct {
	// DefaultFormat is the processor pipeline used by blocks without a
	// format option, e.g. "markdown" or "template,markdown".
	DefaultFormat string
	// Meta is merged below the page's own header values.
	Meta map[string]any
}

// Block is a named unit of page content with its processor pipeline.
type Block struct {
	Name    string
	Format  []string
	Content string
}

// Page is a parsed page file.
type Page struct {
	Meta   map[string]any
	blocks []*Block
	index  map[string]*Block
}

// New assembles a page from already separated blocks. Duplicate block names
// are rejected.
func New(meta map[string]any, blocks ...*Block) (*Page, error) {
	if meta == nil {
		meta = map[string]any{}
	}
	p := &Page{Meta: meta, index: make(map[string]*Block, len(blocks))}
	for _, b := range blocks {
		if b.Name == "" {
			return nil, invalidPage("block without name")
		}
		if _, dup := p.index[b.Name]; dup {
			return nil, invalidPage("duplicate block name").WithContext("block", b.Name)
		}
		p.blocks = append(p.blocks, b)
		p.index[b.Name] = b
	}
	return p, nil
}

// Parse parses page data.
func Parse(data []byte, opts Options) (*Page, error) {
	header, body, _, err := splitHeader(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid page").Fatal().Build()
	}
	fields, err := parseMeta(header)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid page").
			Fatal().
			WithContext("reason", "meta header is not valid YAML").
			Build()
	}
	meta := make(map[string]any, len(opts.Meta)+len(fields))
	for k, v := range opts.Meta {
		meta[k] = v
	}
	for k, v := range fields {
		meta[k] = v
	}

	blocks, err := splitBlocks(body, splitFormat(opts.DefaultFormat))
	if err != nil {
		return nil, err
	}
	return New(meta, blocks...)
}

func splitBlocks(body []byte, defaultFormat []string) ([]*Block, error) {
	var (
		blocks  []*Block
		current *Block
		buf     strings.Builder
	)
	flush := func() {
		if current != nil {
			current.Content = buf.String()
			blocks = append(blocks, current)
		}
		buf.Reset()
	}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if m := separatorLine.FindStringSubmatch(line); m != nil {
			flush()
			b, err := blockFromOptions(m[1], defaultFormat, len(blocks) == 0)
			if err != nil {
				return nil, err
			}
			current = b
			continue
		}
		if current == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			current = &Block{Name: DefaultBlockName, Format: defaultFormat}
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid page").Fatal().Build()
	}
	flush()
	return blocks, nil
}

func blockFromOptions(raw string, defaultFormat []string, first bool) (*Block, error) {
	b := &Block{Format: defaultFormat}
	for _, opt := range strings.Fields(raw) {
		key, value, _ := strings.Cut(opt, ":")
		switch key {
		case "name":
			b.Name = value
		case "format", "pipeline":
			b.Format = splitFormat(value)
		default:
			return nil, invalidPage("unknown block option").WithContext("option", key)
		}
	}
	if b.Name == "" {
		if !first {
			return nil, invalidPage("block without name")
		}
		b.Name = DefaultBlockName
	}
	return b, nil
}

func splitFormat(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" && part != "none" {
			out = append(out, part)
		}
	}
	return out
}

func invalidPage(reason string) *errors.ClassifiedError {
	return errors.ValidationError("invalid page").WithContext("reason", reason).Build()
}

// Block returns the block called name.
func (p *Page) Block(name string) (*Block, bool) {
	if p == nil {
		return nil, false
	}
	b, ok := p.index[name]
	return b, ok
}

// HasBlock reports whether the page owns a block called name.
func (p *Page) HasBlock(name string) bool {
	_, ok := p.Block(name)
	return ok
}

// Blocks returns the blocks in declaration order.
func (p *Page) Blocks() []*Block {
	if p == nil {
		return nil
	}
	return append([]*Block(nil), p.blocks...)
}
