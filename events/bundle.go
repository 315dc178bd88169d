package events

import (
	"encoding/json"
	"fmt"

	"github.com/c360/waverobot/errors"
	"github.com/c360/waverobot/wave"
)

// bundlePayload is the wire shape of an inbound event bundle.
type bundlePayload struct {
	Events       []Record                  `json:"events"`
	Wavelet      *wave.WaveletData         `json:"wavelet"`
	Blips        map[string]*wave.BlipData `json:"blips"`
	RobotAddress string                    `json:"robotAddress"`
	RPCServerURL string                    `json:"rpcServerUrl"`
}

// Bundle is one decoded inbound request: the ordered event records plus a
// wavelet mirror materialized from the snapshot, backed by a fresh
// operation queue.
type Bundle struct {
	events       []*Event
	wavelet      *wave.Wavelet
	blips        map[string]*wave.Blip
	robotAddress string
	rpcServerURL string
}

// DecodeBundle parses an inbound request body and materializes the wavelet
// mirror. The robot address from the payload is stamped on the mirror so
// handlers can proxy through it.
func DecodeBundle(body []byte) (*Bundle, error) {
	var payload bundlePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.WrapArgument(err, "Bundle", "DecodeBundle", "payload decode")
	}
	if payload.Wavelet == nil {
		return nil, errors.WrapArgument(
			fmt.Errorf("bundle has no wavelet snapshot"),
			"Bundle", "DecodeBundle", "payload validation")
	}

	queue := wave.NewOperationQueue("")
	blips := make(map[string]*wave.Blip, len(payload.Blips))
	for id, data := range payload.Blips {
		if data.BlipID == "" {
			data.BlipID = id
		}
		wave.DeserializeBlip(queue, blips, data)
	}
	wavelet := wave.DeserializeWavelet(queue, blips, payload.Wavelet)
	if payload.RobotAddress != "" {
		if err := wavelet.SetRobotAddress(payload.RobotAddress); err != nil {
			return nil, err
		}
	}

	b := &Bundle{
		wavelet:      wavelet,
		blips:        blips,
		robotAddress: payload.RobotAddress,
		rpcServerURL: payload.RPCServerURL,
	}
	b.events = make([]*Event, 0, len(payload.Events))
	for _, record := range payload.Events {
		b.events = append(b.events, &Event{record: record, bundle: b})
	}
	return b, nil
}

// Events returns the bundle's events in wire order.
func (b *Bundle) Events() []*Event { return b.events }

// Wavelet returns the materialized wavelet mirror.
func (b *Bundle) Wavelet() *wave.Wavelet { return b.wavelet }

// Blip returns the snapshot blip with the given id, or nil.
func (b *Bundle) Blip(blipID string) *wave.Blip { return b.blips[blipID] }

// RobotAddress returns the robot's full address on this wavelet.
func (b *Bundle) RobotAddress() string { return b.robotAddress }

// RPCServerURL returns the active-API endpoint advertised by the server,
// when present.
func (b *Bundle) RPCServerURL() string { return b.rpcServerURL }

// FilterEventsByType returns the bundle's events of the given type, in
// wire order.
func (b *Bundle) FilterEventsByType(t Type) []*Event {
	var out []*Event
	for _, e := range b.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// WasSelfAdded reports whether this bundle says the robot was added to the
// wavelet.
func (b *Bundle) WasSelfAdded() bool {
	return len(b.FilterEventsByType(WaveletSelfAdded)) > 0
}

// WasSelfRemoved reports whether this bundle says the robot was removed
// from the wavelet.
func (b *Bundle) WasSelfRemoved() bool {
	return len(b.FilterEventsByType(WaveletSelfRemoved)) > 0
}

// WasParticipantAddedToWave reports whether any participants-changed event
// in the bundle added the given participant.
func (b *Bundle) WasParticipantAddedToWave(participantID string) bool {
	for _, e := range b.FilterEventsByType(WaveletParticipantsChanged) {
		for _, added := range e.AddedParticipants() {
			if added == participantID {
				return true
			}
		}
	}
	return false
}

// IsNewWave reports whether the wavelet looks freshly created: its root
// blip has no children yet.
func (b *Bundle) IsNewWave() bool {
	root := b.wavelet.RootBlip()
	return root != nil && !root.HasChildren()
}

// BlipHasChanged reports whether the bundle carries a document-changed
// event for the given blip.
func (b *Bundle) BlipHasChanged(blipID string) bool {
	if blipID == "" {
		return false
	}
	for _, e := range b.FilterEventsByType(DocumentChanged) {
		if e.stringProperty(propBlipID) == blipID {
			return true
		}
	}
	return false
}
