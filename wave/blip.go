package wave

import (
	"fmt"

	"github.com/c360/waverobot/errors"
)

// Blip is the mirror of a single content node within a wavelet. Blips form
// a tree via parent/child ids resolved through the wavelet's shared blip
// table; a Blip never points back at its Wavelet.
type Blip struct {
	blipID           string
	waveID           string
	waveletID        string
	creator          string
	creationTime     int64
	lastModifiedTime int64
	version          int64
	content          string
	parentBlipID     string
	childBlipIDs     []string
	contributors     []string
	annotations      []Annotation
	elements         map[int]Element
	blips            map[string]*Blip
	queue            *OperationQueue
}

// ID returns the blip's id within its wavelet.
func (b *Blip) ID() string { return b.blipID }

// WaveID returns the id of the wave this blip belongs to.
func (b *Blip) WaveID() string { return b.waveID }

// WaveletID returns the id of the wavelet this blip belongs to.
func (b *Blip) WaveletID() string { return b.waveletID }

// Creator returns the address of the participant that created the blip.
func (b *Blip) Creator() string { return b.creator }

// CreationTime returns the blip's creation time in epoch milliseconds.
func (b *Blip) CreationTime() int64 { return b.creationTime }

// LastModifiedTime returns the blip's last modification time in epoch
// milliseconds.
func (b *Blip) LastModifiedTime() int64 { return b.lastModifiedTime }

// Version returns the blip's version counter.
func (b *Blip) Version() int64 { return b.version }

// Content returns the blip's raw content string.
func (b *Blip) Content() string { return b.content }

// Contributors returns the addresses that have contributed to the blip.
func (b *Blip) Contributors() []string {
	return append([]string(nil), b.contributors...)
}

// ParentBlipID returns the id of the parent blip, or "" for the root.
func (b *Blip) ParentBlipID() string { return b.parentBlipID }

// ParentBlip resolves the parent through the shared blip table, or nil.
func (b *Blip) ParentBlip() *Blip {
	if b.parentBlipID == "" {
		return nil
	}
	return b.blips[b.parentBlipID]
}

// ChildBlipIDs returns the ids of the blip's children, in order.
func (b *Blip) ChildBlipIDs() []string {
	return append([]string(nil), b.childBlipIDs...)
}

// ChildBlips resolves the materialized children through the shared blip
// table. Children not present in the table are skipped.
func (b *Blip) ChildBlips() []*Blip {
	children := make([]*Blip, 0, len(b.childBlipIDs))
	for _, id := range b.childBlipIDs {
		if child := b.blips[id]; child != nil {
			children = append(children, child)
		}
	}
	return children
}

// HasChildren reports whether the blip has any child blips.
func (b *Blip) HasChildren() bool { return len(b.childBlipIDs) > 0 }

// Annotations returns the blip's annotations.
func (b *Blip) Annotations() []Annotation {
	return append([]Annotation(nil), b.annotations...)
}

// Elements returns a copy of the blip's elements keyed by content offset.
func (b *Blip) Elements() map[int]Element {
	elements := make(map[int]Element, len(b.elements))
	for offset, e := range b.elements {
		elements[offset] = e
	}
	return elements
}

// ElementAt returns the element at the given content offset, if any.
func (b *Blip) ElementAt(offset int) (Element, bool) {
	e, ok := b.elements[offset]
	return e, ok
}

// setContent replaces the mirror's content without queueing an operation.
// Used when another queued operation already implies the content change
// (for example the title-line rewrite driven by Wavelet.SetTitle).
func (b *Blip) setContent(content string) {
	b.content = content
}

// deleteChildBlipID removes a child id from the blip's child list,
// preserving order.
func (b *Blip) deleteChildBlipID(blipID string) {
	for i, id := range b.childBlipIDs {
		if id == blipID {
			b.childBlipIDs = append(b.childBlipIDs[:i], b.childBlipIDs[i+1:]...)
			return
		}
	}
}

// Append adds text at the end of the blip's content.
func (b *Blip) Append(text string) {
	b.content += text
	b.queue.AppendToDocument(b, text)
}

// InsertAt inserts text at the given content offset.
func (b *Blip) InsertAt(index int, text string) error {
	if index < 0 || index > len(b.content) {
		return errors.WrapArgument(
			fmt.Errorf("index %d out of range [0,%d]", index, len(b.content)),
			"Blip", "InsertAt", "index validation")
	}
	b.content = b.content[:index] + text + b.content[index:]
	b.queue.InsertIntoDocument(b, index, text)
	return nil
}

// DeleteRange removes the content in the half-open range [r.Start, r.End).
func (b *Blip) DeleteRange(r Range) error {
	if r.Start < 0 || r.End < r.Start || r.End > len(b.content) {
		return errors.WrapArgument(
			fmt.Errorf("range [%d,%d) invalid for content length %d",
				r.Start, r.End, len(b.content)),
			"Blip", "DeleteRange", "range validation")
	}
	b.content = b.content[:r.Start] + b.content[r.End:]
	b.queue.DeleteFromDocument(b, r)
	return nil
}

// Replace replaces the blip's whole content.
func (b *Blip) Replace(text string) {
	b.content = text
	b.queue.ReplaceDocument(b, text)
}

// AppendStyledText appends a run of styled text.
func (b *Blip) AppendStyledText(st StyledText) {
	b.content += st.Text
	b.queue.AppendStyledText(b, st)
}

// Annotate sets a named annotation over a range of content.
func (b *Blip) Annotate(name, value string, r Range) error {
	if r.Start < 0 || r.End < r.Start || r.End > len(b.content) {
		return errors.WrapArgument(
			fmt.Errorf("range [%d,%d) invalid for content length %d",
				r.Start, r.End, len(b.content)),
			"Blip", "Annotate", "range validation")
	}
	a := Annotation{Name: name, Value: value, Range: r}
	b.annotations = append(b.annotations, a)
	b.queue.SetAnnotation(b, a)
	return nil
}

// AnnotateAll sets a named annotation over the whole content.
func (b *Blip) AnnotateAll(name, value string) {
	a := Annotation{Name: name, Value: value, Range: Range{Start: 0, End: len(b.content)}}
	b.annotations = append(b.annotations, a)
	b.queue.SetAnnotationNoRange(b, name, value)
}

// ClearAnnotation removes annotations with the given name inside a range.
func (b *Blip) ClearAnnotation(name string, r Range) {
	kept := b.annotations[:0]
	for _, a := range b.annotations {
		if a.Name == name && a.Range.Start >= r.Start && a.Range.End <= r.End {
			continue
		}
		kept = append(kept, a)
	}
	b.annotations = kept
	b.queue.DeleteAnnotation(b, name, r)
}

// ApplyStyle annotates a range with a text style.
func (b *Blip) ApplyStyle(style StyleType, r Range) error {
	return b.Annotate("style", string(style), r)
}

// AppendElement appends an element at the end of the content.
func (b *Blip) AppendElement(e Element) {
	if b.elements == nil {
		b.elements = make(map[int]Element)
	}
	b.elements[len(b.content)] = e
	b.queue.AppendElement(b, e)
}

// InsertElement places an element at the given content offset.
func (b *Blip) InsertElement(index int, e Element) error {
	if index < 0 || index > len(b.content) {
		return errors.WrapArgument(
			fmt.Errorf("index %d out of range [0,%d]", index, len(b.content)),
			"Blip", "InsertElement", "index validation")
	}
	if b.elements == nil {
		b.elements = make(map[int]Element)
	}
	b.elements[index] = e
	b.queue.InsertElement(b, index, e)
	return nil
}

// DeleteElement removes the element at the given content offset.
func (b *Blip) DeleteElement(index int) error {
	if _, ok := b.elements[index]; !ok {
		return errors.WrapArgument(
			fmt.Errorf("no element at offset %d", index),
			"Blip", "DeleteElement", "element lookup")
	}
	delete(b.elements, index)
	b.queue.DeleteElement(b, index)
	return nil
}

// ReplaceElement replaces the element at the given content offset.
func (b *Blip) ReplaceElement(index int, e Element) error {
	if _, ok := b.elements[index]; !ok {
		return errors.WrapArgument(
			fmt.Errorf("no element at offset %d", index),
			"Blip", "ReplaceElement", "element lookup")
	}
	b.elements[index] = e
	b.queue.ReplaceElement(b, index, e)
	return nil
}

// CreateChild creates a new child blip under this blip and returns its
// mirror.
func (b *Blip) CreateChild(text string) *Blip {
	return b.queue.CreateChildOfBlip(b, text)
}

// AppendInlineBlip appends an inline blip inside this blip's document and
// returns its mirror.
func (b *Blip) AppendInlineBlip(text string) *Blip {
	return b.queue.AppendInlineBlip(b, text)
}

// InsertInlineBlip inserts an inline blip at a content offset and returns
// its mirror.
func (b *Blip) InsertInlineBlip(index int, text string) (*Blip, error) {
	if index < 0 || index > len(b.content) {
		return nil, errors.WrapArgument(
			fmt.Errorf("index %d out of range [0,%d]", index, len(b.content)),
			"Blip", "InsertInlineBlip", "index validation")
	}
	return b.queue.InsertInlineBlip(b, index, text), nil
}
