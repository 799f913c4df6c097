package content

import (
	"encoding/json"
	"errors"
)

// Document is a structured rich-text body: an ordered list of blocks.
// It is produced by the CMS and only ever read by this module.
type Document struct {
	Blocks []Block
}

// Block is one top-level node of a Document. The set of implementations is
// closed: Paragraph, Heading, HorizontalRule, MediaBlock and UnknownBlock.
type Block interface {
	isBlock()
}

// Inline is a node inside a Paragraph, Heading or Link. The set of
// implementations is closed: TextRun, Link and UnknownInline.
type Inline interface {
	isInline()
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Children []Inline
}

// Heading is a section title. Tag is "h1" to "h6"; empty means "h2".
type Heading struct {
	Tag      string
	Children []Inline
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// MediaBlock is an embedded upload.
type MediaBlock struct {
	Media Media
}

// UnknownBlock is a node kind this module does not render. Keeping it in
// the tree preserves block positions for callers that inspect Type.
type UnknownBlock struct {
	Type string
}

func (Paragraph) isBlock()      {}
func (Heading) isBlock()        {}
func (HorizontalRule) isBlock() {}
func (MediaBlock) isBlock()     {}
func (UnknownBlock) isBlock()   {}

// Format is the closed set of text styles a TextRun may carry.
type Format uint8

const (
	FormatNone Format = iota
	FormatBold
	FormatItalic
	FormatBoldItalic
)

// Bitmask values used by the CMS editor for text nodes.
const (
	formatBitBold   = 1
	formatBitItalic = 2
)

// TextRun is a span of text with a single style.
type TextRun struct {
	Text   string
	Format Format
}

// Link is a hyperlink wrapping text runs.
type Link struct {
	URL      string
	NewTab   bool
	Children []TextRun
}

// UnknownInline is an inline node kind this module does not render.
type UnknownInline struct {
	Type string
}

func (TextRun) isInline()       {}
func (Link) isInline()          {}
func (UnknownInline) isInline() {}

// Text returns the concatenated text of the link's runs, without styling.
func (l Link) Text() string {
	var s string
	for _, r := range l.Children {
		s += r.Text
	}
	return s
}

// rawNode covers every field the editor emits on any node kind. Element
// nodes use "format" for alignment strings, text nodes for the style
// bitmask, so it is decoded lazily.
type rawNode struct {
	Type     string            `json:"type"`
	Tag      string            `json:"tag"`
	Text     string            `json:"text"`
	Format   json.RawMessage   `json:"format"`
	Children []json.RawMessage `json:"children"`
	Value    json.RawMessage   `json:"value"`
	Fields   *rawFields        `json:"fields"`
}

type rawFields struct {
	URL       string          `json:"url"`
	NewTab    bool            `json:"newTab"`
	BlockType string          `json:"blockType"`
	Media     json.RawMessage `json:"media"`
}

// UnmarshalJSON decodes the editor state shape {"root":{"children":[...]}}.
// Malformed or unrecognized nodes decode to Unknown variants instead of
// failing the whole document, and a value of the wrong shape (an HTML string
// from an older schema, say) decodes to an empty document.
func (d *Document) UnmarshalJSON(b []byte) error {
	var state struct {
		Root *struct {
			Children []json.RawMessage `json:"children"`
		} `json:"root"`
	}
	d.Blocks = nil
	if err := json.Unmarshal(b, &state); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil
		}
		return err
	}
	if state.Root == nil {
		return nil
	}
	for _, raw := range state.Root.Children {
		d.Blocks = append(d.Blocks, decodeBlock(raw))
	}
	return nil
}

func decodeBlock(raw json.RawMessage) Block {
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return UnknownBlock{}
	}
	switch n.Type {
	case "paragraph":
		return Paragraph{Children: decodeInlines(n.Children)}
	case "heading":
		return Heading{Tag: n.Tag, Children: decodeInlines(n.Children)}
	case "horizontalrule":
		return HorizontalRule{}
	case "upload":
		return MediaBlock{Media: decodeMedia(n.Value)}
	case "block":
		if n.Fields != nil && n.Fields.BlockType == "mediaBlock" {
			return MediaBlock{Media: decodeMedia(n.Fields.Media)}
		}
	}
	return UnknownBlock{Type: n.Type}
}

func decodeInlines(children []json.RawMessage) []Inline {
	out := make([]Inline, 0, len(children))
	for _, raw := range children {
		out = append(out, decodeInline(raw))
	}
	return out
}

func decodeInline(raw json.RawMessage) Inline {
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return UnknownInline{}
	}
	switch n.Type {
	case "text":
		return TextRun{Text: n.Text, Format: decodeFormat(n.Format)}
	case "link", "autolink":
		l := Link{}
		if n.Fields != nil {
			l.URL = n.Fields.URL
			l.NewTab = n.Fields.NewTab
		}
		for _, c := range decodeInlines(n.Children) {
			if run, ok := c.(TextRun); ok {
				l.Children = append(l.Children, run)
			}
		}
		return l
	}
	return UnknownInline{Type: n.Type}
}

// decodeFormat keeps only the bold and italic bits of the editor bitmask.
func decodeFormat(raw json.RawMessage) Format {
	var mask int
	if len(raw) == 0 || json.Unmarshal(raw, &mask) != nil {
		return FormatNone
	}
	return Format(mask & (formatBitBold | formatBitItalic))
}

func decodeMedia(raw json.RawMessage) Media {
	var m Media
	if len(raw) == 0 || m.UnmarshalJSON(raw) != nil {
		return Media{}
	}
	return m
}
