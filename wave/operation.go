package wave

import "strings"

// OperationType identifies one kind of remote-bound mutation. The set is
// closed; values are the wire names the server dispatches on.
type OperationType string

// Wavelet-level operations
const (
	OpWaveletAppendBlip        OperationType = "WAVELET_APPEND_BLIP"
	OpWaveletAddParticipant    OperationType = "WAVELET_ADD_PARTICIPANT"
	OpWaveletRemoveParticipant OperationType = "WAVELET_REMOVE_PARTICIPANT"
	OpWaveletCreate            OperationType = "WAVELET_CREATE"
	OpWaveletSetTitle          OperationType = "WAVELET_SET_TITLE"
	OpWaveletSetDataDoc        OperationType = "WAVELET_SET_DATA_DOC"
)

// Blip-level operations
const (
	OpBlipCreateChild OperationType = "BLIP_CREATE_CHILD"
	OpBlipDelete      OperationType = "BLIP_DELETE"
)

// Document content operations
const (
	OpDocumentAppend           OperationType = "DOCUMENT_APPEND"
	OpDocumentInsert           OperationType = "DOCUMENT_INSERT"
	OpDocumentDelete           OperationType = "DOCUMENT_DELETE"
	OpDocumentReplace          OperationType = "DOCUMENT_REPLACE"
	OpDocumentAppendStyledText OperationType = "DOCUMENT_APPEND_STYLED_TEXT"
)

// Annotation operations
const (
	OpAnnotationSet        OperationType = "DOCUMENT_ANNOTATION_SET"
	OpAnnotationSetNoRange OperationType = "DOCUMENT_ANNOTATION_SET_NORANGE"
	OpAnnotationDelete     OperationType = "DOCUMENT_ANNOTATION_DELETE"
)

// Element operations
const (
	OpElementAppend  OperationType = "DOCUMENT_ELEMENT_APPEND"
	OpElementInsert  OperationType = "DOCUMENT_ELEMENT_INSERT"
	OpElementDelete  OperationType = "DOCUMENT_ELEMENT_DELETE"
	OpElementReplace OperationType = "DOCUMENT_ELEMENT_REPLACE"
)

// Inline blip operations
const (
	OpInlineBlipAppend OperationType = "DOCUMENT_INLINE_BLIP_APPEND"
	OpInlineBlipInsert OperationType = "DOCUMENT_INLINE_BLIP_INSERT"
	OpInlineBlipDelete OperationType = "DOCUMENT_INLINE_BLIP_DELETE"
)

// Robot-level operations
const (
	// OpRobotNotify carries the robot's protocol version and capabilities
	// hash. It is prepended to every outbound submission so the server can
	// reject submissions from a robot with a stale registration.
	OpRobotNotify OperationType = "ROBOT_NOTIFY_CAPABILITIES_HASH"
	// OpRobotFetchWave requests a snapshot of a wavelet.
	OpRobotFetchWave OperationType = "ROBOT_FETCH_WAVE"
)

// IsContentOp reports whether the operation type affects document content,
// which is the only case where the operation index is meaningful.
func (t OperationType) IsContentOp() bool {
	return strings.HasPrefix(string(t), "DOCUMENT_")
}

// NoIndex is the index value for operations that do not address a document
// offset.
const NoIndex = -1

// Operation is a single intended remote mutation. Operations are immutable
// once appended to a queue; queues never reorder them.
type Operation struct {
	WaveID      string        `json:"waveId"`
	WaveletID   string        `json:"waveletId"`
	BlipID      string        `json:"blipId,omitempty"`
	Type        OperationType `json:"type"`
	Index       int           `json:"index"`
	Property    any           `json:"property"`
	ProxyingFor string        `json:"proxyingFor,omitempty"`
}

// NotifyProperty is the payload of an OpRobotNotify operation.
type NotifyProperty struct {
	ProtocolVersion  string `json:"protocolVersion"`
	CapabilitiesHash string `json:"capabilitiesHash"`
}

// CreateWaveletProperty is the payload of an OpWaveletCreate operation.
type CreateWaveletProperty struct {
	WaveletData *WaveletData `json:"waveletData"`
	Message     string       `json:"message,omitempty"`
}

// DataDocProperty is the payload of an OpWaveletSetDataDoc operation.
type DataDocProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
