package wave

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueAppendAndDrain(t *testing.T) {
	q := NewOperationQueue("")
	q.Append(OpWaveletSetTitle, "w!1", "w!conv+root", "", NoIndex, "title")
	q.Append(OpDocumentAppend, "w!1", "w!conv+root", "b1", NoIndex, "text")

	assert.Equal(t, 2, q.Len())

	// Pending returns a copy; mutating it does not touch the log.
	ops := q.Pending()
	ops[0].Type = OpBlipDelete
	assert.Equal(t, OpWaveletSetTitle, q.Pending()[0].Type)

	q.Clear()
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Pending())
}

func TestQueueStampsProxyingFor(t *testing.T) {
	q := NewOperationQueue("user1")
	op := q.Append(OpDocumentAppend, "w!1", "w!conv+root", "b1", NoIndex, "text")
	assert.Equal(t, "user1", op.ProxyingFor)
	assert.Equal(t, "user1", q.ProxyingFor())
}

func TestQueueProxyForSharesLog(t *testing.T) {
	q := NewOperationQueue("")
	proxied := q.ProxyFor("user2")

	q.Append(OpWaveletSetTitle, "w!1", "w!conv+root", "", NoIndex, "a")
	proxied.Append(OpDocumentAppend, "w!1", "w!conv+root", "b1", NoIndex, "b")

	ops := q.Pending()
	require.Len(t, ops, 2)
	assert.Empty(t, ops[0].ProxyingFor)
	assert.Equal(t, "user2", ops[1].ProxyingFor)
	assert.Equal(t, ops, proxied.Pending())

	// Clearing through either handle clears the one shared log.
	proxied.Clear()
	assert.Zero(t, q.Len())
}

func TestQueueSubmitWith(t *testing.T) {
	a := NewOperationQueue("")
	b := NewOperationQueue("")
	a.Append(OpWaveletSetTitle, "w!1", "w!conv+root", "", NoIndex, "a")
	b.Append(OpDocumentAppend, "w!2", "w!conv+root", "b1", NoIndex, "b")

	a.SubmitWith(b)
	require.Equal(t, 2, a.Len())
	assert.Equal(t, "w!2", a.Pending()[0].WaveID)
	assert.Equal(t, "w!1", a.Pending()[1].WaveID)

	// Joined queues stay joined.
	b.Append(OpBlipDelete, "w!2", "w!conv+root", "b1", NoIndex, nil)
	assert.Equal(t, 3, a.Len())

	// Joining again is a no-op.
	a.SubmitWith(b)
	assert.Equal(t, 3, a.Len())
}

func TestNotifyRobotInformation(t *testing.T) {
	q := NewOperationQueue("")
	q.Append(OpWaveletSetTitle, "w!1", "w!conv+root", "", NoIndex, "title")

	q.NotifyRobotInformation("0.21", "abc123")
	require.Equal(t, 2, q.Len())
	head := q.Pending()[0]
	assert.Equal(t, OpRobotNotify, head.Type)
	prop, ok := head.Property.(NotifyProperty)
	require.True(t, ok)
	assert.Equal(t, "0.21", prop.ProtocolVersion)
	assert.Equal(t, "abc123", prop.CapabilitiesHash)

	// A second notification replaces the head instead of stacking.
	q.NotifyRobotInformation("0.21", "def456")
	require.Equal(t, 2, q.Len())
	prop = q.Pending()[0].Property.(NotifyProperty)
	assert.Equal(t, "def456", prop.CapabilitiesHash)
}

func TestNotifyRobotInformationOnEmptyQueue(t *testing.T) {
	q := NewOperationQueue("")
	q.NotifyRobotInformation("0.21", "abc")
	require.Equal(t, 1, q.Len())
	assert.Equal(t, OpRobotNotify, q.Pending()[0].Type)
}

func TestCreateWavelet(t *testing.T) {
	q := NewOperationQueue("")
	w := q.CreateWavelet("example.com", []string{"robot@appspot.com"}, "msg")

	assert.True(t, strings.HasPrefix(w.WaveID(), "example.com!TBD_"))
	assert.Equal(t, "example.com!conv+root", w.WaveletID())
	require.NotNil(t, w.RootBlip())
	assert.Equal(t, []string{"robot@appspot.com"}, w.Participants())

	ops := q.Pending()
	require.Len(t, ops, 1)
	assert.Equal(t, OpWaveletCreate, ops[0].Type)
	prop, ok := ops[0].Property.(CreateWaveletProperty)
	require.True(t, ok)
	assert.Equal(t, "msg", prop.Message)
	require.NotNil(t, prop.WaveletData)
	assert.Equal(t, w.WaveID(), prop.WaveletData.WaveID)
	assert.Equal(t, w.RootBlipID(), prop.WaveletData.RootBlipID)
}

func TestFetchWavelet(t *testing.T) {
	q := NewOperationQueue("")
	q.FetchWavelet("w!1", "w!conv+root")

	ops := q.Pending()
	require.Len(t, ops, 1)
	assert.Equal(t, OpRobotFetchWave, ops[0].Type)
	assert.Equal(t, "w!1", ops[0].WaveID)
	assert.Equal(t, "w!conv+root", ops[0].WaveletID)
}

func TestCreateChildOfBlip(t *testing.T) {
	q := NewOperationQueue("")
	blips := make(map[string]*Blip)
	parent := DeserializeBlip(q, blips, &BlipData{
		BlipID:    "b1",
		WaveID:    "w!1",
		WaveletID: "w!conv+root",
		Content:   "\nparent",
	})

	child := q.CreateChildOfBlip(parent, "\nchild")
	assert.Equal(t, "b1", child.ParentBlipID())
	assert.Contains(t, parent.ChildBlipIDs(), child.ID())
	assert.Same(t, child, blips[child.ID()])

	ops := q.Pending()
	require.Len(t, ops, 1)
	assert.Equal(t, OpBlipCreateChild, ops[0].Type)
	assert.Equal(t, "b1", ops[0].BlipID)
}

func TestPlaceholderIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := placeholderID()
		assert.True(t, strings.HasPrefix(id, "TBD_"))
		assert.False(t, seen[id], "duplicate placeholder id %s", id)
		seen[id] = true
	}
}
