package events

import (
	"github.com/c360/waverobot/wave"
)

// Type identifies a kind of wave server event.
type Type string

// Event types reported by the wave server.
const (
	WaveletBlipCreated         Type = "WAVELET_BLIP_CREATED"
	WaveletBlipRemoved         Type = "WAVELET_BLIP_REMOVED"
	WaveletCreated             Type = "WAVELET_CREATED"
	WaveletFetched             Type = "WAVELET_FETCHED"
	WaveletParticipantsChanged Type = "WAVELET_PARTICIPANTS_CHANGED"
	WaveletSelfAdded           Type = "WAVELET_SELF_ADDED"
	WaveletSelfRemoved         Type = "WAVELET_SELF_REMOVED"
	WaveletTagsChanged         Type = "WAVELET_TAGS_CHANGED"
	WaveletTitleChanged        Type = "WAVELET_TITLE_CHANGED"
	BlipContributorsChanged    Type = "BLIP_CONTRIBUTORS_CHANGED"
	BlipSubmitted              Type = "BLIP_SUBMITTED"
	DocumentChanged            Type = "DOCUMENT_CHANGED"
	AnnotatedTextChanged       Type = "ANNOTATED_TEXT_CHANGED"
	FormButtonClicked          Type = "FORM_BUTTON_CLICKED"
	GadgetStateChanged         Type = "GADGET_STATE_CHANGED"
	OperationError             Type = "OPERATION_ERROR"
)

var knownTypes = map[Type]bool{
	WaveletBlipCreated:         true,
	WaveletBlipRemoved:         true,
	WaveletCreated:             true,
	WaveletFetched:             true,
	WaveletParticipantsChanged: true,
	WaveletSelfAdded:           true,
	WaveletSelfRemoved:         true,
	WaveletTagsChanged:         true,
	WaveletTitleChanged:        true,
	BlipContributorsChanged:    true,
	BlipSubmitted:              true,
	DocumentChanged:            true,
	AnnotatedTextChanged:       true,
	FormButtonClicked:          true,
	GadgetStateChanged:         true,
	OperationError:             true,
}

// Known reports whether t is one of the event types this library
// understands. Unknown tags in a bundle are skipped during dispatch.
func (t Type) Known() bool { return knownTypes[t] }

// Property keys used inside an event record's properties map.
const (
	propParticipantsAdded   = "participantsAdded"
	propParticipantsRemoved = "participantsRemoved"
	propBlipID              = "blipId"
	propTitle               = "title"
	propVersion             = "version"
	propButton              = "button"
)

// Record is one raw event as it arrives on the wire.
type Record struct {
	Type       Type           `json:"type"`
	ModifiedBy string         `json:"modifiedBy"`
	Timestamp  int64          `json:"timestamp"`
	Properties map[string]any `json:"properties"`
}

// Event is the dispatch view of a record: the raw fields plus typed
// property accessors, resolved against the bundle's wavelet mirror.
type Event struct {
	record Record
	bundle *Bundle
}

// Type returns the event's type tag.
func (e *Event) Type() Type { return e.record.Type }

// ModifiedBy returns the participant that triggered the event.
func (e *Event) ModifiedBy() string { return e.record.ModifiedBy }

// Timestamp returns the event time in milliseconds since the epoch.
func (e *Event) Timestamp() int64 { return e.record.Timestamp }

// Properties returns the raw property map.
func (e *Event) Properties() map[string]any { return e.record.Properties }

// Wavelet returns the bundle's wavelet mirror.
func (e *Event) Wavelet() *wave.Wavelet { return e.bundle.Wavelet() }

// Blip returns the blip the event refers to, or nil when the event carries
// no blipId or the blip is not part of the bundle snapshot.
func (e *Event) Blip() *wave.Blip {
	id := e.stringProperty(propBlipID)
	if id == "" {
		return nil
	}
	return e.bundle.Blip(id)
}

// AddedParticipants returns the participants added by the event.
func (e *Event) AddedParticipants() []string {
	return e.stringSliceProperty(propParticipantsAdded)
}

// RemovedParticipants returns the participants removed by the event.
func (e *Event) RemovedParticipants() []string {
	return e.stringSliceProperty(propParticipantsRemoved)
}

// CreatedBlipID returns the id of the newly created blip, if any.
func (e *Event) CreatedBlipID() string {
	if e.record.Type != WaveletBlipCreated {
		return ""
	}
	return e.stringProperty(propBlipID)
}

// RemovedBlipID returns the id of the removed blip, if any.
func (e *Event) RemovedBlipID() string {
	if e.record.Type != WaveletBlipRemoved {
		return ""
	}
	return e.stringProperty(propBlipID)
}

// ChangedTitle returns the wavelet's new title, if the event carries one.
func (e *Event) ChangedTitle() string {
	return e.stringProperty(propTitle)
}

// ChangedVersion returns the changed version number, if carried.
func (e *Event) ChangedVersion() int64 {
	switch v := e.record.Properties[propVersion].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

// ButtonName returns the clicked form button's name, if carried.
func (e *Event) ButtonName() string {
	return e.stringProperty(propButton)
}

func (e *Event) stringProperty(key string) string {
	s, _ := e.record.Properties[key].(string)
	return s
}

func (e *Event) stringSliceProperty(key string) []string {
	switch v := e.record.Properties[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
