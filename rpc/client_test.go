package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/waverobot/errors"
	"github.com/c360/waverobot/wave"
)

const gatewayURL = "http://gmodules.com/api/rpc"

// scriptedFetcher records the exchange and replies with a canned body.
type scriptedFetcher struct {
	calls    int
	lastURL  string
	lastBody []byte
	reply    []byte
	err      error
}

func (f *scriptedFetcher) Send(_ context.Context, url, _ string, body []byte) ([]byte, error) {
	f.calls++
	f.lastURL = url
	f.lastBody = body
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newTestClient(f Fetcher) *Client {
	creds := map[string]Credential{
		gatewayURL: {ConsumerKey: "mykey", ConsumerSecret: "mysecret"},
	}
	return NewClient(f, "0.21", "cafebabe", creds, nil, nil)
}

func TestSubmitWithoutCredentials(t *testing.T) {
	f := &scriptedFetcher{}
	c := newTestClient(f)
	queue := wave.NewOperationQueue("")
	queue.FetchWavelet("w!1", "w!conv+root")

	_, err := c.Submit(context.Background(), queue, "http://unknown.example.com/rpc")
	require.Error(t, err)
	assert.True(t, errors.IsState(err))
	assert.Zero(t, f.calls, "no transport activity without credentials")
}

func TestSubmitPrependsNotifyAndClears(t *testing.T) {
	f := &scriptedFetcher{reply: []byte(`[{"id":"n"},{"id":"op1","data":{}}]`)}
	c := newTestClient(f)

	queue := wave.NewOperationQueue("")
	queue.FetchWavelet("w!1", "w!conv+root")

	responses, err := c.Submit(context.Background(), queue, gatewayURL)
	require.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.Zero(t, queue.Len(), "queue cleared after successful submit")

	var ops []wave.Operation
	require.NoError(t, json.Unmarshal(f.lastBody, &ops))
	require.Len(t, ops, 2)
	assert.Equal(t, wave.OpRobotNotify, ops[0].Type)
	assert.Equal(t, wave.OpRobotFetchWave, ops[1].Type)

	prop, ok := ops[0].Property.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0.21", prop["protocolVersion"])
	assert.Equal(t, "cafebabe", prop["capabilitiesHash"])

	u, err := url.Parse(f.lastURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "google.com:mykey", q.Get("oauth_consumer_key"))
	assert.NotEmpty(t, q.Get("oauth_signature"))
	assert.NotEmpty(t, q.Get("oauth_body_hash"))
}

func TestSubmitTransportError(t *testing.T) {
	f := &scriptedFetcher{err: fmt.Errorf("connection refused")}
	c := newTestClient(f)
	queue := wave.NewOperationQueue("")
	queue.FetchWavelet("w!1", "w!conv+root")

	_, err := c.Submit(context.Background(), queue, gatewayURL)
	require.Error(t, err)
	assert.Equal(t, 2, queue.Len(), "queue kept on failure for a later retry")
}

func TestSubmitNormalizesSingleObjectResponse(t *testing.T) {
	f := &scriptedFetcher{reply: []byte(`{"id":"n","data":{}}`)}
	c := newTestClient(f)
	queue := wave.NewOperationQueue("")
	queue.FetchWavelet("w!1", "w!conv+root")

	responses, err := c.Submit(context.Background(), queue, gatewayURL)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "n", responses[0].ID)
}

func TestSubmitMalformedResponse(t *testing.T) {
	f := &scriptedFetcher{reply: []byte(`not json`)}
	c := newTestClient(f)
	queue := wave.NewOperationQueue("")
	queue.FetchWavelet("w!1", "w!conv+root")

	_, err := c.Submit(context.Background(), queue, gatewayURL)
	require.Error(t, err)
	assert.True(t, errors.IsRemote(err))
}

func TestFetchWaveletConsumesSecondResponse(t *testing.T) {
	// Index 0 answers the prepended notify; the fetch payload rides at
	// index 1. Its placement is part of the protocol contract.
	reply := `[
		{"id": "notify", "data": {}},
		{"id": "fetch", "data": {
			"waveletData": {
				"waveId": "google.com!w1",
				"waveletId": "google.com!conv+root",
				"rootBlipId": "b1",
				"title": "Fetched",
				"participants": ["foo@bar.com"]
			},
			"blips": {
				"b1": {
					"blipId": "b1",
					"waveId": "google.com!w1",
					"waveletId": "google.com!conv+root",
					"content": "\nFetched"
				}
			}
		}}
	]`
	f := &scriptedFetcher{reply: []byte(reply)}
	c := newTestClient(f)

	w, err := c.FetchWavelet(context.Background(), "google.com!w1", "google.com!conv+root", "", gatewayURL)
	require.NoError(t, err)
	assert.Equal(t, "google.com!w1", w.WaveID())
	assert.Equal(t, "Fetched", w.Title())
	require.NotNil(t, w.RootBlip())
	assert.Equal(t, "\nFetched", w.RootBlip().Content())
	assert.Zero(t, w.OperationQueue().Len())
}

func TestFetchWaveletSingleResponseIsMalformed(t *testing.T) {
	// A reply that lost the notify response would shift everything by
	// one; treat it as malformed rather than consume the wrong payload.
	f := &scriptedFetcher{reply: []byte(`[{"id":"fetch","data":{}}]`)}
	c := newTestClient(f)

	_, err := c.FetchWavelet(context.Background(), "google.com!w1", "google.com!conv+root", "", gatewayURL)
	require.Error(t, err)
	assert.True(t, errors.IsRemote(err))
}

func TestFetchWaveletGatewayError(t *testing.T) {
	f := &scriptedFetcher{reply: []byte(`[
		{"id": "notify", "data": {}},
		{"id": "fetch", "error": {"message": "wavelet not found"}}
	]`)}
	c := newTestClient(f)

	_, err := c.FetchWavelet(context.Background(), "google.com!w1", "google.com!conv+root", "", gatewayURL)
	require.Error(t, err)
	assert.True(t, errors.IsRemote(err))
	assert.Contains(t, err.Error(), "wavelet not found")
}

func TestFetchWaveletProxyFor(t *testing.T) {
	f := &scriptedFetcher{reply: []byte(`[
		{"id": "notify", "data": {}},
		{"id": "fetch", "data": {
			"waveletData": {"waveId": "google.com!w1", "waveletId": "google.com!conv+root", "rootBlipId": "b1", "participants": []},
			"blips": {"b1": {"blipId": "b1", "waveId": "google.com!w1", "waveletId": "google.com!conv+root", "content": "\n"}}
		}}
	]`)}
	c := newTestClient(f)

	w, err := c.FetchWavelet(context.Background(), "google.com!w1", "google.com!conv+root", "user1", gatewayURL)
	require.NoError(t, err)

	// Fresh operations keep proxying for the requested id.
	w.AddParticipant("x@bar.com")
	ops := w.OperationQueue().Pending()
	require.Len(t, ops, 1)
	assert.Equal(t, "user1", ops[0].ProxyingFor)
}

func TestNewWaveWithoutSubmission(t *testing.T) {
	f := &scriptedFetcher{}
	c := newTestClient(f)

	w, err := c.NewWave(context.Background(), "example.com", []string{"me@example.com"}, "", "", "")
	require.NoError(t, err)
	assert.Zero(t, f.calls)
	assert.Contains(t, w.WaveID(), "TBD_")
	assert.Equal(t, 1, w.OperationQueue().Len())
}

func TestNewWaveImmediateSubmission(t *testing.T) {
	f := &scriptedFetcher{reply: []byte(`[
		{"id": "notify", "data": {}},
		{"id": "create", "data": {
			"waveId": "example.com!w+real",
			"waveletId": "example.com!conv+root",
			"blipId": "b+real"
		}}
	]`)}
	c := newTestClient(f)

	w, err := c.NewWave(context.Background(), "example.com", []string{"me@example.com"}, "hi", "", gatewayURL)
	require.NoError(t, err)
	assert.Equal(t, "example.com!w+real", w.WaveID())
	assert.Equal(t, "example.com!conv+root", w.WaveletID())
	assert.Equal(t, "b+real", w.RootBlipID())
	require.NotNil(t, w.RootBlip())
	assert.Equal(t, []string{"me@example.com"}, w.Participants())
}

func TestBlindWavelet(t *testing.T) {
	c := newTestClient(&scriptedFetcher{})
	w := c.BlindWavelet("example.com!w1", "example.com!conv+root", "")
	w.AddParticipant("guest@example.com")
	assert.Equal(t, 1, w.OperationQueue().Len())
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, contentTypeJSON, r.Header.Get("Content-Type"))
		fmt.Fprint(w, `[{"id":"n"}]`)
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	body, err := f.Send(context.Background(), srv.URL, contentTypeJSON, []byte(`[]`))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"n"}]`, string(body))
}

func TestHTTPFetcherNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	_, err := f.Send(context.Background(), srv.URL, contentTypeJSON, []byte(`[]`))
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.Contains(t, err.Error(), "502")
}
