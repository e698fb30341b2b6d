package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveybuddy/internal/model"
)

func plain(text string) []model.Span {
	return []model.Span{{Text: text}}
}

func TestRenderContentListThenParagraph(t *testing.T) {
	blocks := RenderContent("- a\n- b\nc")

	require.Len(t, blocks, 2)
	assert.Equal(t, model.BlockList, blocks[0].Kind)
	require.Len(t, blocks[0].Items, 2)
	assert.Equal(t, plain("a"), blocks[0].Items[0])
	assert.Equal(t, plain("b"), blocks[0].Items[1])
	assert.Equal(t, model.BlockParagraph, blocks[1].Kind)
	assert.Equal(t, plain("c"), blocks[1].Spans)
}

func TestRenderContentHeadingLevels(t *testing.T) {
	blocks := RenderContent("# One\n## Two\n### Three")

	require.Len(t, blocks, 3)
	assert.Equal(t, model.BlockHeading, blocks[0].Kind)
	assert.Equal(t, model.BlockHeading, blocks[1].Kind)
	assert.Equal(t, model.BlockSubheading, blocks[2].Kind)
	assert.Equal(t, plain("Three"), blocks[2].Spans)
}

func TestRenderContentBulletMarkers(t *testing.T) {
	blocks := RenderContent("- dash\n* star\n• dot")

	require.Len(t, blocks, 1)
	assert.Equal(t, model.BlockList, blocks[0].Kind)
	require.Len(t, blocks[0].Items, 3)
	assert.Equal(t, plain("star"), blocks[0].Items[1])
}

func TestRenderContentBlankLinesAreSeparatorsOnly(t *testing.T) {
	blocks := RenderContent("one\n\n\n- a\n\n- b")

	require.Len(t, blocks, 3)
	assert.Equal(t, model.BlockParagraph, blocks[0].Kind)
	assert.Equal(t, model.BlockList, blocks[1].Kind)
	require.Len(t, blocks[1].Items, 1)
	assert.Equal(t, model.BlockList, blocks[2].Kind)
}

func TestRenderContentStrongEmphasis(t *testing.T) {
	blocks := RenderContent("a **bold** tail")

	require.Len(t, blocks, 1)
	require.Equal(t, []model.Span{
		{Text: "a "},
		{Text: "bold", Strong: true},
		{Text: " tail"},
	}, blocks[0].Spans)
}

func TestRenderContentUnmatchedEmphasisStaysLiteral(t *testing.T) {
	blocks := RenderContent("mid-stream **not closed yet")

	require.Len(t, blocks, 1)
	assert.Equal(t, plain("mid-stream **not closed yet"), blocks[0].Spans)
}

func TestRenderContentEmphasisInsideBullet(t *testing.T) {
	blocks := RenderContent("- **Yet** subtly removes shame")

	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Items, 1)
	assert.Equal(t, []model.Span{
		{Text: "Yet", Strong: true},
		{Text: " subtly removes shame"},
	}, blocks[0].Items[0])
}

func TestRenderContentIdempotent(t *testing.T) {
	text := "## Heading\n\n- one **two**\n- three\n\npara **open"

	first := RenderContent(text)
	second := RenderContent(text)

	assert.Equal(t, first, second)
}

func TestRenderContentEmpty(t *testing.T) {
	assert.Empty(t, RenderContent(""))
	assert.Empty(t, RenderContent("\n\n"))
}
