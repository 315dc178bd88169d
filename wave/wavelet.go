package wave

import (
	"fmt"
	"strings"

	"github.com/c360/waverobot/errors"
)

// participantSet is an insertion-ordered set of participant addresses,
// shared by pointer between a wavelet and its proxy views.
type participantSet struct {
	ids []string
}

func newParticipantSet(ids ...string) *participantSet {
	s := &participantSet{}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *participantSet) contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// add appends id if absent and reports whether it was added.
func (s *participantSet) add(id string) bool {
	if s.contains(id) {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// remove deletes id preserving order and reports whether it was present.
func (s *participantSet) remove(id string) bool {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}

func (s *participantSet) slice() []string {
	return append([]string(nil), s.ids...)
}

// Wavelet is an in-memory, owner-mutable mirror of a remote wavelet. Every
// mutating method updates the mirror synchronously and appends the
// corresponding operations to the wavelet's queue.
type Wavelet struct {
	waveID           string
	waveletID        string
	creator          string
	creationTime     int64
	lastModifiedTime int64
	version          int64
	title            string
	rootBlipID       string
	participants     *participantSet
	dataDocuments    map[string]string
	tags             []string
	blips            map[string]*Blip
	queue            *OperationQueue
	robotAddress     string
}

// NewBlindWavelet returns an empty stub of a wavelet backed by the given
// queue. Use it to apply wavelet operations without fetching the wave
// first; the caller is responsible for getting the queue submitted, either
// directly or by joining it to another wavelet's queue with SubmitWith.
func NewBlindWavelet(waveID, waveletID string, queue *OperationQueue, blips map[string]*Blip) *Wavelet {
	if blips == nil {
		blips = make(map[string]*Blip)
	}
	return &Wavelet{
		waveID:        waveID,
		waveletID:     waveletID,
		participants:  newParticipantSet(),
		dataDocuments: make(map[string]string),
		blips:         blips,
		queue:         queue,
	}
}

// WaveID returns the id of the wave this wavelet belongs to.
func (w *Wavelet) WaveID() string { return w.waveID }

// WaveletID returns this wavelet's id.
func (w *Wavelet) WaveletID() string { return w.waveletID }

// Creator returns the address of the participant that created the wavelet.
func (w *Wavelet) Creator() string { return w.creator }

// CreationTime returns the wavelet's creation time in epoch milliseconds.
func (w *Wavelet) CreationTime() int64 { return w.creationTime }

// LastModifiedTime returns the wavelet's last modification time in epoch
// milliseconds.
func (w *Wavelet) LastModifiedTime() int64 { return w.lastModifiedTime }

// Version returns the wavelet's version counter.
func (w *Wavelet) Version() int64 { return w.version }

// Title returns the wavelet's title.
func (w *Wavelet) Title() string { return w.title }

// RootBlipID returns the id of the root blip, or "" if unknown.
func (w *Wavelet) RootBlipID() string { return w.rootBlipID }

// RootBlip returns the root blip, or nil if it is not materialized in the
// blip table.
func (w *Wavelet) RootBlip() *Blip { return w.blips[w.rootBlipID] }

// Blip returns the blip with the given id, or nil.
func (w *Wavelet) Blip(blipID string) *Blip { return w.blips[blipID] }

// Blips returns the wavelet's blip table. The map is live, keyed by blip
// id; treat it as read-only.
func (w *Wavelet) Blips() map[string]*Blip { return w.blips }

// Participants returns the participant addresses in insertion order.
func (w *Wavelet) Participants() []string { return w.participants.slice() }

// Tags returns the wavelet's tags.
func (w *Wavelet) Tags() []string { return append([]string(nil), w.tags...) }

// DataDocument returns the named auxiliary data document, or "".
func (w *Wavelet) DataDocument(name string) string { return w.dataDocuments[name] }

// DataDocuments returns a copy of the auxiliary data document map.
func (w *Wavelet) DataDocuments() map[string]string {
	docs := make(map[string]string, len(w.dataDocuments))
	for name, value := range w.dataDocuments {
		docs[name] = value
	}
	return docs
}

// OperationQueue returns the queue that mutations of this wavelet append
// to.
func (w *Wavelet) OperationQueue() *OperationQueue { return w.queue }

// Domain returns the wave's domain, the part of the wave id before the
// "!" separator.
func (w *Wavelet) Domain() string {
	if i := strings.Index(w.waveID, "!"); i >= 0 {
		return w.waveID[:i]
	}
	return w.waveID
}

// RobotAddress returns the robot's attributed address on this wavelet, or
// "" if not yet set.
func (w *Wavelet) RobotAddress() string { return w.robotAddress }

// SetRobotAddress records the robot's attributed address. The address can
// be set exactly once; any second call fails with a state error naming the
// previously set value.
func (w *Wavelet) SetRobotAddress(address string) error {
	if w.robotAddress != "" {
		return errors.WrapState(
			fmt.Errorf("%w: robot address has been set previously to %s",
				errors.ErrRobotAddressSet, w.robotAddress),
			"Wavelet", "SetRobotAddress", "exactly-once check")
	}
	w.robotAddress = address
	return nil
}

// SetTitle rewrites the wavelet title and the conventional title line of
// the root blip's content: the first line after the leading newline is the
// title, and everything from the second newline on is preserved verbatim.
// Empty or single-line root content becomes "\n" + title + "\n".
func (w *Wavelet) SetTitle(title string) error {
	if strings.ContainsRune(title, '\n') {
		return errors.WrapArgument(
			fmt.Errorf("title %q must not contain a newline", title),
			"Wavelet", "SetTitle", "title validation")
	}

	w.queue.SetTitleOfWavelet(w, title)
	w.title = title

	root := w.RootBlip()
	if root == nil {
		return nil
	}
	content := root.Content()
	rest := ""
	if len(content) > 0 {
		rest = content[1:]
	}
	if j := strings.Index(rest, "\n"); j >= 0 {
		root.setContent("\n" + title + rest[j:])
	} else {
		root.setContent("\n" + title + "\n")
	}
	return nil
}

// Reply appends a new blip under the wavelet's root and returns its
// mirror, already registered in the blip table under its placeholder id.
// The text must start with a newline, the structural requirement of the
// line-based content convention.
func (w *Wavelet) Reply(text string) (*Blip, error) {
	if !strings.HasPrefix(text, "\n") {
		return nil, errors.WrapArgument(
			fmt.Errorf("reply text %q must begin with a newline", text),
			"Wavelet", "Reply", "text validation")
	}
	b := w.queue.AppendBlipToWavelet(w, text)
	w.blips[b.blipID] = b
	return b, nil
}

// Delete removes the given blip from the wavelet. The blip must have no
// remaining children; deleting a parent first is a state error, so callers
// delete leaves upward. On success the blip leaves the table, its id is
// removed from its parent's child list, and one delete operation is
// queued.
func (w *Wavelet) Delete(b *Blip) error {
	if b == nil {
		return errors.WrapArgument(
			fmt.Errorf("blip must not be nil"),
			"Wavelet", "Delete", "blip validation")
	}
	return w.DeleteBlipID(b.blipID)
}

// DeleteBlipID removes the blip with the given id; see Delete.
func (w *Wavelet) DeleteBlipID(blipID string) error {
	b, ok := w.blips[blipID]
	if !ok {
		return errors.WrapState(
			fmt.Errorf("%w: %s", errors.ErrBlipNotFound, blipID),
			"Wavelet", "DeleteBlipID", "blip lookup")
	}
	if len(b.childBlipIDs) > 0 {
		return errors.WrapState(
			fmt.Errorf("%w: %s has %d children", errors.ErrBlipHasChildren,
				blipID, len(b.childBlipIDs)),
			"Wavelet", "DeleteBlipID", "children check")
	}
	if parent := b.ParentBlip(); parent != nil {
		parent.deleteChildBlipID(blipID)
	}
	delete(w.blips, blipID)
	w.queue.DeleteBlip(w, blipID)
	return nil
}

// AddParticipant adds a participant to the wavelet. Adding an address that
// is already present is a no-op and queues nothing.
func (w *Wavelet) AddParticipant(participantID string) {
	if !w.participants.add(participantID) {
		return
	}
	w.queue.AddParticipant(w, participantID)
}

// RemoveParticipant removes a participant from the wavelet. Removing an
// absent address is a no-op and queues nothing.
func (w *Wavelet) RemoveParticipant(participantID string) {
	if !w.participants.remove(participantID) {
		return
	}
	w.queue.RemoveParticipant(w, participantID)
}

// SetDataDocument sets a named auxiliary data document on the wavelet.
func (w *Wavelet) SetDataDocument(name, value string) {
	w.dataDocuments[name] = value
	w.queue.SetDataDocument(w, name, value)
}

// ProxyFor returns a view of this wavelet whose operations are attributed
// to robot+proxyFor@domain. The view shares the blip table and snapshot
// data but is backed by a forked, proxying queue. Requires the robot
// address to have been set, since the proxied address derives from it.
func (w *Wavelet) ProxyFor(proxyFor string) (*Wavelet, error) {
	if w.robotAddress == "" {
		return nil, errors.WrapState(
			fmt.Errorf("robot address must be set before proxying"),
			"Wavelet", "ProxyFor", "robot address check")
	}
	proxied, err := proxiedAddress(w.robotAddress, proxyFor)
	if err != nil {
		return nil, err
	}
	w.participants.add(proxied)

	view := *w
	view.queue = w.queue.ProxyFor(proxyFor)
	view.robotAddress = proxied
	return &view, nil
}

// proxiedAddress substitutes the proxy segment of a robot address:
// "name+old#suffix@domain" with proxy "p" becomes "name+p#suffix@domain".
func proxiedAddress(robotAddress, proxyFor string) (string, error) {
	at := strings.LastIndex(robotAddress, "@")
	if at < 0 {
		return "", errors.WrapArgument(
			fmt.Errorf("robot address %q has no domain part", robotAddress),
			"Wavelet", "ProxyFor", "address parsing")
	}
	local, domain := robotAddress[:at], robotAddress[at:]

	suffix := ""
	if hash := strings.Index(local, "#"); hash >= 0 {
		local, suffix = local[:hash], local[hash:]
	}
	if plus := strings.Index(local, "+"); plus >= 0 {
		local = local[:plus]
	}
	return local + "+" + proxyFor + suffix + domain, nil
}

// SubmitWith joins this wavelet's queue into other's so that a later
// single submission carries both logs.
func (w *Wavelet) SubmitWith(other *Wavelet) {
	w.queue.SubmitWith(other.queue)
}
