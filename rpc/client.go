package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360/waverobot/errors"
	"github.com/c360/waverobot/metric"
	"github.com/c360/waverobot/oauth"
	"github.com/c360/waverobot/wave"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Credential is one registered consumer key/secret pair for an RPC
// gateway.
type Credential struct {
	ConsumerKey    string
	ConsumerSecret string
}

// Client submits operation queues to wave RPC gateways. Credentials are
// fixed at construction; a gateway without a registered credential cannot
// be reached through this client.
type Client struct {
	fetch           Fetcher
	protocolVersion string
	capabilityHash  string
	signers         map[string]*oauth.Signer
	logger          *slog.Logger
	metrics         *metric.Set
}

// NewClient builds a client. creds maps each gateway URL to its consumer
// credential. A nil fetcher gets the production HTTP fetcher, a nil logger
// falls back to slog.Default, and nil metrics disables instrumentation.
func NewClient(fetch Fetcher, protocolVersion, capabilityHash string,
	creds map[string]Credential, logger *slog.Logger, metrics *metric.Set) *Client {
	if fetch == nil {
		fetch = NewHTTPFetcher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	signers := make(map[string]*oauth.Signer, len(creds))
	for rpcURL, cred := range creds {
		signers[rpcURL] = oauth.NewSigner(cred.ConsumerKey, cred.ConsumerSecret)
	}
	return &Client{
		fetch:           fetch,
		protocolVersion: protocolVersion,
		capabilityHash:  capabilityHash,
		signers:         signers,
		logger:          logger,
		metrics:         metrics,
	}
}

// Registered reports whether a credential is registered for the gateway.
func (c *Client) Registered(rpcURL string) bool {
	_, ok := c.signers[rpcURL]
	return ok
}

// Submit sends the queue's pending operations to the gateway, led by the
// capabilities notification, and clears the queue on success. Without a
// registered credential it fails before any transport activity.
func (c *Client) Submit(ctx context.Context, queue *wave.OperationQueue, rpcURL string) ([]Response, error) {
	signer, ok := c.signers[rpcURL]
	if !ok {
		return nil, errors.WrapState(
			fmt.Errorf("%w for %s", errors.ErrNoCredentials, rpcURL),
			"Client", "Submit", "credential lookup")
	}

	queue.NotifyRobotInformation(c.protocolVersion, c.capabilityHash)
	body, err := json.Marshal(queue.Pending())
	if err != nil {
		return nil, errors.WrapArgument(err, "Client", "Submit", "operation encode")
	}

	signedURL, err := signer.SignedURL("POST", rpcURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "Client", "Submit", "request signing")
	}

	start := time.Now()
	raw, err := c.fetch.Send(ctx, signedURL, contentTypeJSON, body)
	if c.metrics != nil {
		c.metrics.ObserveSubmit(rpcURL, time.Since(start), err == nil)
		c.metrics.AddOperationsSubmitted(queue.Len())
	}
	if err != nil {
		return nil, errors.Wrap(err, "Client", "Submit", "gateway exchange")
	}

	responses, err := decodeResponses(raw)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("operations submitted",
		"rpcURL", rpcURL, "operations", queue.Len(), "responses", len(responses))
	queue.Clear()
	return responses, nil
}

// decodeResponses normalizes the gateway's reply: a JSON array of
// responses, or a single object for a batch of one.
func decodeResponses(raw []byte) ([]Response, error) {
	var many []Response
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	var one Response
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, errors.WrapRemote(
			fmt.Errorf("%w: %v", errors.ErrResponseMalformed, err),
			"Client", "decodeResponses", "response decode")
	}
	return []Response{one}, nil
}

// operationResponse picks the response for the caller's single operation
// out of a submission's reply. The capabilities notification prepended by
// Submit occupies index 0, so the operation's own response is at index 1.
func operationResponse(responses []Response) (*Response, error) {
	if len(responses) < 2 {
		return nil, errors.WrapRemote(
			fmt.Errorf("%w: got %d responses, need 2", errors.ErrResponseMalformed, len(responses)),
			"Client", "operationResponse", "response count check")
	}
	resp := &responses[1]
	if resp.IsError() {
		return nil, errors.WrapRemote(
			fmt.Errorf("gateway rejected operation: %s", resp.ErrorMessage()),
			"Client", "operationResponse", "operation result")
	}
	return resp, nil
}

// FetchWavelet retrieves a wavelet snapshot and materializes a mirror
// whose queue (empty after the exchange) proxies for proxyFor.
func (c *Client) FetchWavelet(ctx context.Context, waveID, waveletID, proxyFor, rpcURL string) (*wave.Wavelet, error) {
	queue := wave.NewOperationQueue(proxyFor)
	queue.FetchWavelet(waveID, waveletID)

	responses, err := c.Submit(ctx, queue, rpcURL)
	if err != nil {
		return nil, err
	}
	resp, err := operationResponse(responses)
	if err != nil {
		return nil, err
	}

	var waveletData wave.WaveletData
	if err := decodeDataValue(resp.Data[DataWaveletData], &waveletData); err != nil {
		return nil, err
	}
	var blipDatas map[string]*wave.BlipData
	if err := decodeDataValue(resp.Data[DataBlips], &blipDatas); err != nil {
		return nil, err
	}

	blips := make(map[string]*wave.Blip, len(blipDatas))
	for id, data := range blipDatas {
		if data.BlipID == "" {
			data.BlipID = id
		}
		wave.DeserializeBlip(queue, blips, data)
	}
	return wave.DeserializeWavelet(queue, blips, &waveletData), nil
}

// NewWave creates a wave on the domain. With an rpcURL the creation is
// submitted immediately and the returned mirror carries the server's real
// ids; without one the mirror keeps placeholder ids and the caller submits
// the queue later.
func (c *Client) NewWave(ctx context.Context, domain string, participants []string,
	msg, proxyFor, rpcURL string) (*wave.Wavelet, error) {
	queue := wave.NewOperationQueue(proxyFor)
	wavelet := queue.CreateWavelet(domain, participants, msg)
	if rpcURL == "" {
		return wavelet, nil
	}

	responses, err := c.Submit(ctx, queue, rpcURL)
	if err != nil {
		return nil, err
	}
	resp, err := operationResponse(responses)
	if err != nil {
		return nil, err
	}

	blips := make(map[string]*wave.Blip)
	created := wave.DeserializeWavelet(queue, blips, &wave.WaveletData{
		WaveID:       resp.StringData(DataWaveID),
		WaveletID:    resp.StringData(DataWaveletID),
		RootBlipID:   resp.StringData(DataBlipID),
		Participants: participants,
	})
	wave.DeserializeBlip(queue, blips, &wave.BlipData{
		BlipID:    resp.StringData(DataBlipID),
		WaveID:    resp.StringData(DataWaveID),
		WaveletID: resp.StringData(DataWaveletID),
	})
	return created, nil
}

// BlindWavelet returns an operation-only wavelet stub for applying
// wavelet operations without fetching the wave first.
func (c *Client) BlindWavelet(waveID, waveletID, proxyFor string) *wave.Wavelet {
	queue := wave.NewOperationQueue(proxyFor)
	return wave.NewBlindWavelet(waveID, waveletID, queue, nil)
}

// decodeDataValue converts a decoded-JSON data member into its typed wire
// struct by round-tripping it through the encoder.
func decodeDataValue(value any, out any) error {
	if value == nil {
		return errors.WrapRemote(
			fmt.Errorf("%w: missing data member", errors.ErrResponseMalformed),
			"Client", "decodeDataValue", "data member check")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.WrapRemote(err, "Client", "decodeDataValue", "data member encode")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.WrapRemote(
			fmt.Errorf("%w: %v", errors.ErrResponseMalformed, err),
			"Client", "decodeDataValue", "data member decode")
	}
	return nil
}
