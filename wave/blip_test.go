package wave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/waverobot/errors"
)

func newTestBlip(t *testing.T, content string) *Blip {
	t.Helper()
	queue := NewOperationQueue("")
	blips := make(map[string]*Blip)
	return DeserializeBlip(queue, blips, &BlipData{
		BlipID:    "b1",
		WaveID:    "w!1",
		WaveletID: "w!conv+root",
		Creator:   "foo@bar.com",
		Content:   content,
	})
}

func lastOp(t *testing.T, b *Blip) Operation {
	t.Helper()
	ops := b.queue.Pending()
	require.NotEmpty(t, ops)
	return ops[len(ops)-1]
}

func TestBlipAppend(t *testing.T) {
	b := newTestBlip(t, "\nHello")
	b.Append(" world")

	assert.Equal(t, "\nHello world", b.Content())
	op := lastOp(t, b)
	assert.Equal(t, OpDocumentAppend, op.Type)
	assert.Equal(t, " world", op.Property)
	assert.Equal(t, "b1", op.BlipID)
}

func TestBlipInsertAt(t *testing.T) {
	b := newTestBlip(t, "\nHeo")
	require.NoError(t, b.InsertAt(3, "ll"))
	assert.Equal(t, "\nHello", b.Content())

	op := lastOp(t, b)
	assert.Equal(t, OpDocumentInsert, op.Type)
	assert.Equal(t, 3, op.Index)

	err := b.InsertAt(99, "x")
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
	err = b.InsertAt(-1, "x")
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
}

func TestBlipDeleteRange(t *testing.T) {
	b := newTestBlip(t, "\nHello world")
	require.NoError(t, b.DeleteRange(Range{Start: 6, End: 12}))
	assert.Equal(t, "\nHello", b.Content())

	op := lastOp(t, b)
	assert.Equal(t, OpDocumentDelete, op.Type)

	err := b.DeleteRange(Range{Start: 5, End: 2})
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
	err = b.DeleteRange(Range{Start: 0, End: 100})
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
}

func TestBlipReplace(t *testing.T) {
	b := newTestBlip(t, "\nold")
	b.Replace("\nnew")
	assert.Equal(t, "\nnew", b.Content())
	assert.Equal(t, OpDocumentReplace, lastOp(t, b).Type)
}

func TestBlipAppendStyledText(t *testing.T) {
	b := newTestBlip(t, "\n")
	b.AppendStyledText(StyledText{Text: "loud", Style: StyleBold})

	assert.Equal(t, "\nloud", b.Content())
	op := lastOp(t, b)
	assert.Equal(t, OpDocumentAppendStyledText, op.Type)
	st, ok := op.Property.(StyledText)
	require.True(t, ok)
	assert.Equal(t, StyleBold, st.Style)
}

func TestBlipAnnotate(t *testing.T) {
	b := newTestBlip(t, "\nHello")
	require.NoError(t, b.Annotate("lang", "en", Range{Start: 1, End: 6}))

	annotations := b.Annotations()
	require.Len(t, annotations, 1)
	assert.Equal(t, "lang", annotations[0].Name)
	assert.Equal(t, OpAnnotationSet, lastOp(t, b).Type)

	err := b.Annotate("lang", "en", Range{Start: 4, End: 1})
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
}

func TestBlipAnnotateAll(t *testing.T) {
	b := newTestBlip(t, "\nHello")
	b.AnnotateAll("style/fontWeight", "bold")

	annotations := b.Annotations()
	require.Len(t, annotations, 1)
	assert.Equal(t, Range{Start: 0, End: len(b.Content())}, annotations[0].Range)
	assert.Equal(t, OpAnnotationSetNoRange, lastOp(t, b).Type)
}

func TestBlipClearAnnotation(t *testing.T) {
	b := newTestBlip(t, "\nHello")
	require.NoError(t, b.Annotate("lang", "en", Range{Start: 1, End: 6}))
	b.ClearAnnotation("lang", Range{Start: 1, End: 6})

	assert.Empty(t, b.Annotations())
	assert.Equal(t, OpAnnotationDelete, lastOp(t, b).Type)
}

func TestBlipApplyStyle(t *testing.T) {
	b := newTestBlip(t, "\nHello")
	require.NoError(t, b.ApplyStyle(StyleHeading1, Range{Start: 1, End: 6}))

	annotations := b.Annotations()
	require.Len(t, annotations, 1)
	assert.Equal(t, "style", annotations[0].Name)
	assert.Equal(t, "HEADING1", annotations[0].Value)
}

func TestBlipElements(t *testing.T) {
	b := newTestBlip(t, "\nHello")

	b.AppendElement(NewImage("http://example.com/x.png", 10, 10, "pic"))
	img, ok := b.ElementAt(len("\nHello"))
	require.True(t, ok)
	assert.Equal(t, ElementImage, img.Type)
	assert.Equal(t, OpElementAppend, lastOp(t, b).Type)

	require.NoError(t, b.InsertElement(1, NewGadget("http://example.com/g.xml")))
	assert.Equal(t, OpElementInsert, lastOp(t, b).Type)

	require.NoError(t, b.ReplaceElement(1, NewFormElement(ElementButton, "ok", "", "OK")))
	el, ok := b.ElementAt(1)
	require.True(t, ok)
	assert.Equal(t, ElementButton, el.Type)
	assert.True(t, el.IsFormElement())

	require.NoError(t, b.DeleteElement(1))
	_, ok = b.ElementAt(1)
	assert.False(t, ok)

	err := b.DeleteElement(42)
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
}

func TestBlipCreateChild(t *testing.T) {
	b := newTestBlip(t, "\nparent")
	child := b.CreateChild("\nchild")

	assert.Equal(t, b.ID(), child.ParentBlipID())
	assert.Same(t, b, child.ParentBlip())
	assert.True(t, b.HasChildren())
	require.Len(t, b.ChildBlips(), 1)
	assert.Same(t, child, b.ChildBlips()[0])
}

func TestBlipInlineBlips(t *testing.T) {
	b := newTestBlip(t, "\nHello world")

	appended := b.AppendInlineBlip("\ninline")
	assert.Equal(t, b.ID(), appended.ParentBlipID())
	assert.Equal(t, OpInlineBlipAppend, lastOp(t, b).Type)

	inserted, err := b.InsertInlineBlip(3, "\ninline2")
	require.NoError(t, err)
	assert.Equal(t, b.ID(), inserted.ParentBlipID())
	op := lastOp(t, b)
	assert.Equal(t, OpInlineBlipInsert, op.Type)
	assert.Equal(t, 3, op.Index)

	_, err = b.InsertInlineBlip(-2, "\nbad")
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
}

func TestBlipSerializeRoundTrip(t *testing.T) {
	b := newTestBlip(t, "\nHello")
	require.NoError(t, b.Annotate("lang", "en", Range{Start: 1, End: 6}))
	b.AppendElement(NewGadget("http://example.com/g.xml"))
	child := b.CreateChild("\nchild")

	data := b.Serialize()
	queue := NewOperationQueue("")
	blips := make(map[string]*Blip)
	actual := DeserializeBlip(queue, blips, data)

	assert.Equal(t, b.ID(), actual.ID())
	assert.Equal(t, b.WaveID(), actual.WaveID())
	assert.Equal(t, b.WaveletID(), actual.WaveletID())
	assert.Equal(t, b.Content(), actual.Content())
	assert.Equal(t, []string{child.ID()}, actual.ChildBlipIDs())
	require.Len(t, actual.Annotations(), 1)
	assert.Equal(t, "lang", actual.Annotations()[0].Name)
	require.Len(t, actual.Elements(), 1)
}
