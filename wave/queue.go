package wave

import (
	"github.com/google/uuid"
)

// placeholderID returns a temporary id for an object that does not exist on
// the server yet. The server assigns the real id when the creating
// operation is applied.
func placeholderID() string {
	return "TBD_" + uuid.NewString()
}

// opLog is the shared, ordered log backing one or more OperationQueue
// handles. Joining queues makes their handles point at one log; forking a
// proxy queue shares the log while stamping a different identity.
type opLog struct {
	ops []Operation
}

// OperationQueue is an ordered log of intended remote mutations for one
// acting identity. Mutating methods on Wavelet and Blip append here; the
// RPC layer reads, submits, and clears it.
type OperationQueue struct {
	log      *opLog
	proxyFor string
}

// NewOperationQueue creates an empty queue. A non-empty proxyFor stamps
// that identity on every appended operation, attributing mutations to
// robot+proxyFor@domain on the remote side.
func NewOperationQueue(proxyFor string) *OperationQueue {
	return &OperationQueue{log: &opLog{}, proxyFor: proxyFor}
}

// ProxyingFor returns the proxy identity stamped on this queue's
// operations, or "" when the queue acts as the robot itself.
func (q *OperationQueue) ProxyingFor() string {
	return q.proxyFor
}

// Append records one operation at the end of the log and returns it.
func (q *OperationQueue) Append(typ OperationType, waveID, waveletID, blipID string, index int, property any) Operation {
	op := Operation{
		WaveID:      waveID,
		WaveletID:   waveletID,
		BlipID:      blipID,
		Type:        typ,
		Index:       index,
		Property:    property,
		ProxyingFor: q.proxyFor,
	}
	q.log.ops = append(q.log.ops, op)
	return op
}

// Pending returns the operations appended so far, in order. The result is
// a copy; reading it does not drain the queue.
func (q *OperationQueue) Pending() []Operation {
	return append([]Operation(nil), q.log.ops...)
}

// Len returns the number of pending operations.
func (q *OperationQueue) Len() int {
	return len(q.log.ops)
}

// Clear discards all pending operations. Called after a successful
// submission, or after a response has been fully translated into mirror
// updates.
func (q *OperationQueue) Clear() {
	q.log.ops = q.log.ops[:0]
}

// ProxyFor returns a new queue over the same underlying log that stamps
// the given identity on every future operation.
func (q *OperationQueue) ProxyFor(proxyFor string) *OperationQueue {
	return &OperationQueue{log: q.log, proxyFor: proxyFor}
}

// SubmitWith joins this queue's log into other's: this queue's pending
// operations move to the end of other's log, and from then on both handles
// append to the single merged log. One submission then carries both.
func (q *OperationQueue) SubmitWith(other *OperationQueue) {
	if q.log == other.log {
		return
	}
	other.log.ops = append(other.log.ops, q.log.ops...)
	q.log = other.log
}

// NotifyRobotInformation prepends the capabilities-version notification
// that must lead every outbound submission. Calling it again for the same
// submission replaces the existing head operation instead of stacking a
// duplicate, so the freshest version values win.
func (q *OperationQueue) NotifyRobotInformation(protocolVersion, capabilitiesHash string) {
	op := Operation{
		Type:  OpRobotNotify,
		Index: NoIndex,
		Property: NotifyProperty{
			ProtocolVersion:  protocolVersion,
			CapabilitiesHash: capabilitiesHash,
		},
		ProxyingFor: q.proxyFor,
	}
	if len(q.log.ops) > 0 && q.log.ops[0].Type == OpRobotNotify {
		q.log.ops[0] = op
		return
	}
	q.log.ops = append([]Operation{op}, q.log.ops...)
}

// CreateWavelet queues creation of a new wave on the given domain and
// returns a mirror of its root wavelet, backed by this queue. The wave,
// wavelet, and root blip carry placeholder ids until the server responds.
func (q *OperationQueue) CreateWavelet(domain string, participants []string, message string) *Wavelet {
	waveID := domain + "!" + placeholderID()
	waveletID := domain + "!conv+root"

	blips := make(map[string]*Blip)
	root := &Blip{
		blipID:    placeholderID(),
		waveID:    waveID,
		waveletID: waveletID,
		content:   "",
		blips:     blips,
		queue:     q,
	}
	blips[root.blipID] = root

	w := &Wavelet{
		waveID:        waveID,
		waveletID:     waveletID,
		rootBlipID:    root.blipID,
		participants:  newParticipantSet(participants...),
		dataDocuments: make(map[string]string),
		blips:         blips,
		queue:         q,
	}

	q.Append(OpWaveletCreate, waveID, waveletID, "", NoIndex, CreateWaveletProperty{
		WaveletData: w.Serialize(),
		Message:     message,
	})
	return w
}

// FetchWavelet queues a snapshot request for the given wavelet.
func (q *OperationQueue) FetchWavelet(waveID, waveletID string) {
	q.Append(OpRobotFetchWave, waveID, waveletID, "", NoIndex, nil)
}

// AppendBlipToWavelet queues appending a new blip, child of the wavelet's
// root, and returns its mirror. The caller registers the blip in the
// wavelet's table.
func (q *OperationQueue) AppendBlipToWavelet(w *Wavelet, initialContent string) *Blip {
	b := &Blip{
		blipID:       placeholderID(),
		waveID:       w.waveID,
		waveletID:    w.waveletID,
		content:      initialContent,
		parentBlipID: w.rootBlipID,
		blips:        w.blips,
		queue:        q,
	}
	q.Append(OpWaveletAppendBlip, w.waveID, w.waveletID, "", NoIndex, b.Serialize())
	return b
}

// SetTitleOfWavelet queues a title change.
func (q *OperationQueue) SetTitleOfWavelet(w *Wavelet, title string) {
	q.Append(OpWaveletSetTitle, w.waveID, w.waveletID, "", NoIndex, title)
}

// AddParticipant queues adding a participant to the wavelet.
func (q *OperationQueue) AddParticipant(w *Wavelet, participantID string) {
	q.Append(OpWaveletAddParticipant, w.waveID, w.waveletID, "", NoIndex, participantID)
}

// RemoveParticipant queues removing a participant from the wavelet.
func (q *OperationQueue) RemoveParticipant(w *Wavelet, participantID string) {
	q.Append(OpWaveletRemoveParticipant, w.waveID, w.waveletID, "", NoIndex, participantID)
}

// SetDataDocument queues setting a named auxiliary data document.
func (q *OperationQueue) SetDataDocument(w *Wavelet, name, value string) {
	q.Append(OpWaveletSetDataDoc, w.waveID, w.waveletID, "", NoIndex, DataDocProperty{Name: name, Value: value})
}

// DeleteBlip queues deletion of the identified blip.
func (q *OperationQueue) DeleteBlip(w *Wavelet, blipID string) {
	q.Append(OpBlipDelete, w.waveID, w.waveletID, blipID, NoIndex, nil)
}

// CreateChildOfBlip queues creation of a child blip under parent and
// returns its mirror, registered in the shared blip table.
func (q *OperationQueue) CreateChildOfBlip(parent *Blip, initialContent string) *Blip {
	b := &Blip{
		blipID:       placeholderID(),
		waveID:       parent.waveID,
		waveletID:    parent.waveletID,
		content:      initialContent,
		parentBlipID: parent.blipID,
		blips:        parent.blips,
		queue:        q,
	}
	parent.childBlipIDs = append(parent.childBlipIDs, b.blipID)
	parent.blips[b.blipID] = b
	q.Append(OpBlipCreateChild, parent.waveID, parent.waveletID, parent.blipID, NoIndex, b.Serialize())
	return b
}

// AppendToDocument queues appending text to the blip's content.
func (q *OperationQueue) AppendToDocument(b *Blip, text string) {
	q.Append(OpDocumentAppend, b.waveID, b.waveletID, b.blipID, NoIndex, text)
}

// InsertIntoDocument queues inserting text at a document offset.
func (q *OperationQueue) InsertIntoDocument(b *Blip, index int, text string) {
	q.Append(OpDocumentInsert, b.waveID, b.waveletID, b.blipID, index, text)
}

// DeleteFromDocument queues deleting a range of document content.
func (q *OperationQueue) DeleteFromDocument(b *Blip, r Range) {
	q.Append(OpDocumentDelete, b.waveID, b.waveletID, b.blipID, NoIndex, r)
}

// ReplaceDocument queues replacing the blip's whole content.
func (q *OperationQueue) ReplaceDocument(b *Blip, text string) {
	q.Append(OpDocumentReplace, b.waveID, b.waveletID, b.blipID, NoIndex, text)
}

// AppendStyledText queues appending a styled text run.
func (q *OperationQueue) AppendStyledText(b *Blip, st StyledText) {
	q.Append(OpDocumentAppendStyledText, b.waveID, b.waveletID, b.blipID, NoIndex, st)
}

// SetAnnotation queues setting an annotation over a range.
func (q *OperationQueue) SetAnnotation(b *Blip, a Annotation) {
	q.Append(OpAnnotationSet, b.waveID, b.waveletID, b.blipID, NoIndex, a)
}

// SetAnnotationNoRange queues setting an annotation over the whole
// document.
func (q *OperationQueue) SetAnnotationNoRange(b *Blip, name, value string) {
	q.Append(OpAnnotationSetNoRange, b.waveID, b.waveletID, b.blipID, NoIndex,
		Annotation{Name: name, Value: value})
}

// DeleteAnnotation queues deleting annotations with the given name in a
// range.
func (q *OperationQueue) DeleteAnnotation(b *Blip, name string, r Range) {
	q.Append(OpAnnotationDelete, b.waveID, b.waveletID, b.blipID, NoIndex,
		Annotation{Name: name, Range: r})
}

// AppendElement queues appending an element at the end of the document.
func (q *OperationQueue) AppendElement(b *Blip, e Element) {
	q.Append(OpElementAppend, b.waveID, b.waveletID, b.blipID, NoIndex, e)
}

// InsertElement queues inserting an element at a document offset.
func (q *OperationQueue) InsertElement(b *Blip, index int, e Element) {
	q.Append(OpElementInsert, b.waveID, b.waveletID, b.blipID, index, e)
}

// DeleteElement queues deleting the element at a document offset.
func (q *OperationQueue) DeleteElement(b *Blip, index int) {
	q.Append(OpElementDelete, b.waveID, b.waveletID, b.blipID, index, nil)
}

// ReplaceElement queues replacing the element at a document offset.
func (q *OperationQueue) ReplaceElement(b *Blip, index int, e Element) {
	q.Append(OpElementReplace, b.waveID, b.waveletID, b.blipID, index, e)
}

// AppendInlineBlip queues appending an inline blip and returns its mirror,
// registered in the shared blip table.
func (q *OperationQueue) AppendInlineBlip(b *Blip, initialContent string) *Blip {
	inline := &Blip{
		blipID:       placeholderID(),
		waveID:       b.waveID,
		waveletID:    b.waveletID,
		content:      initialContent,
		parentBlipID: b.blipID,
		blips:        b.blips,
		queue:        q,
	}
	b.blips[inline.blipID] = inline
	q.Append(OpInlineBlipAppend, b.waveID, b.waveletID, b.blipID, NoIndex, inline.Serialize())
	return inline
}

// InsertInlineBlip queues inserting an inline blip at a document offset
// and returns its mirror.
func (q *OperationQueue) InsertInlineBlip(b *Blip, index int, initialContent string) *Blip {
	inline := &Blip{
		blipID:       placeholderID(),
		waveID:       b.waveID,
		waveletID:    b.waveletID,
		content:      initialContent,
		parentBlipID: b.blipID,
		blips:        b.blips,
		queue:        q,
	}
	b.blips[inline.blipID] = inline
	q.Append(OpInlineBlipInsert, b.waveID, b.waveletID, b.blipID, index, inline.Serialize())
	return inline
}

// DeleteInlineBlip queues deleting an inline blip.
func (q *OperationQueue) DeleteInlineBlip(b *Blip, inlineBlipID string) {
	q.Append(OpInlineBlipDelete, b.waveID, b.waveletID, b.blipID, NoIndex, inlineBlipID)
}
