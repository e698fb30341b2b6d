package model

// BlockKind identifies a node in the rendered content tree
type BlockKind string

const (
	// BlockHeading covers both # and ## lines; the design renders them at the
	// same visual weight.
	BlockHeading    BlockKind = "heading"
	BlockSubheading BlockKind = "subheading"
	BlockList       BlockKind = "list"
	BlockParagraph  BlockKind = "paragraph"
)

// Span is an inline run of text within a block. Strong marks a **...** span.
type Span struct {
	Text   string `json:"text"`
	Strong bool   `json:"strong,omitempty"`
}

// Block is one node of the content tree produced by the markdown renderer.
// Heading, subheading and paragraph blocks carry Spans; list blocks carry one
// span slice per item.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Spans []Span    `json:"spans,omitempty"`
	Items [][]Span  `json:"items,omitempty"`
}
