package robot

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/c360/waverobot/errors"
	"github.com/c360/waverobot/events"
)

const (
	pathRPC          = "/_wave/robot/jsonrpc"
	pathProfile      = "/_wave/robot/profile"
	pathCapabilities = "/_wave/capabilities.xml"
	pathVerifyToken  = "/_wave/verify_token"

	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeXML  = "text/xml; charset=utf-8"

	// defaultAvatarURL is served when the configuration does not name an
	// avatar.
	defaultAvatarURL = "https://wave.google.com/a/wavesandbox.com/static/images/profiles/rusty.png"
)

// Router builds the HTTP surface the wave server talks to. Mount it as
// the server's handler; unrecognized paths return 404.
func (r *Robot) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc(pathRPC, r.handleRPC).Methods(http.MethodPost)
	router.HandleFunc(pathProfile, r.handleProfile).Methods(http.MethodGet)
	router.HandleFunc(pathCapabilities, r.handleCapabilities).Methods(http.MethodGet)
	router.HandleFunc(pathVerifyToken, r.handleVerifyToken).Methods(http.MethodGet)
	return router
}

// handleRPC is the inbound event pipeline: authenticate, decode the
// bundle, dispatch to handlers, and reply with the operations the
// handlers queued.
func (r *Robot) handleRPC(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		r.logger.Error("reading event bundle failed", "error", err)
		r.fail(w, "jsonrpc", http.StatusInternalServerError)
		return
	}

	if err := r.verifyRequest(req, body); err != nil {
		r.logger.Warn("rejecting unauthenticated event bundle",
			"remote", req.RemoteAddr, "error", err)
		r.metrics.RecordAuthFailure()
		r.fail(w, "jsonrpc", http.StatusUnauthorized)
		return
	}

	bundle, err := events.DecodeBundle(body)
	if err != nil {
		r.logger.Error("decoding event bundle failed", "error", err)
		status := http.StatusInternalServerError
		if errors.IsArgument(err) {
			status = http.StatusBadRequest
		}
		r.fail(w, "jsonrpc", status)
		return
	}

	for _, ev := range bundle.Events() {
		r.metrics.RecordEventReceived(string(ev.Type()))
	}
	if err := bundle.Wavelet().SetRobotAddress(r.cfg.Robot.Address); err != nil {
		// Already set from the bundle payload. The payload wins: it may
		// carry a proxying suffix this robot does not know about.
		r.logger.Debug("robot address taken from bundle",
			"address", bundle.RobotAddress())
	}

	if err := r.dispatcher.Dispatch(bundle); err != nil {
		r.fail(w, "jsonrpc", http.StatusInternalServerError)
		return
	}

	queue := bundle.Wavelet().OperationQueue()
	queue.NotifyRobotInformation(ProtocolVersion, r.registry.Version())
	ops := queue.Pending()
	queue.Clear()

	payload, err := json.Marshal(ops)
	if err != nil {
		r.logger.Error("serializing operation response failed", "error", err)
		r.fail(w, "jsonrpc", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
	r.metrics.RecordRequest("jsonrpc", true)
}

// verifyRequest checks the one-legged OAuth signature on an inbound
// bundle, choosing the credential by the gateway URL the bundle names.
func (r *Robot) verifyRequest(req *http.Request, body []byte) error {
	if r.cfg.AllowUnsigned {
		return nil
	}
	var peek struct {
		RPCServerURL string `json:"rpcServerUrl"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		return errors.WrapAuth(errors.ErrSignatureInvalid,
			"Robot", "verifyRequest", "identify signing gateway")
	}
	validator, ok := r.validators[peek.RPCServerURL]
	if !ok {
		return errors.WrapAuth(errors.ErrUnsignedNotAllowed,
			"Robot", "verifyRequest", "find credential for gateway")
	}
	return validator.Validate(requestURL(req), req.URL.Query(), body)
}

// requestURL reconstructs the absolute URL the client signed, without the
// query string.
func requestURL(req *http.Request) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + req.Host + req.URL.Path
}

// handleProfile serves the robot's participant profile, or a proxied
// participant's profile when a name is given and a profile handler is
// installed.
func (r *Robot) handleProfile(w http.ResponseWriter, req *http.Request) {
	var profile *ParticipantProfile
	if name := req.URL.Query().Get("name"); name != "" && r.profileHandler != nil {
		profile = r.profileHandler(name)
	}
	if profile == nil {
		profile = r.ownProfile()
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		r.fail(w, "profile", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
	r.metrics.RecordRequest("profile", true)
}

func (r *Robot) ownProfile() *ParticipantProfile {
	avatar := r.cfg.Robot.AvatarURL
	if avatar == "" {
		avatar = defaultAvatarURL
	}
	return &ParticipantProfile{
		Name:       r.cfg.Robot.Name,
		ImageURL:   avatar,
		ProfileURL: r.cfg.Robot.ProfileURL,
	}
}

// handleCapabilities serves the capability manifest. Serving it freezes
// the registry, so the version attribute stays true for the life of the
// process.
func (r *Robot) handleCapabilities(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", contentTypeXML)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, r.capabilitiesXML())
	r.metrics.RecordRequest("capabilities", true)
}

func (r *Robot) capabilitiesXML() string {
	caps := r.registry.Map()
	version := r.registry.Version()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?>` + "\n")
	b.WriteString(`<w:robot xmlns:w="http://wave.google.com/extensions/robots/1.0">` + "\n")
	b.WriteString(`  <w:version>` + version + `</w:version>` + "\n")
	b.WriteString(`  <w:protocolversion>` + ProtocolVersion + `</w:protocolversion>` + "\n")
	b.WriteString("  <w:capabilities>\n")
	for _, name := range r.registry.SortedKeys() {
		c := caps[name]
		b.WriteString(`    <w:capability name="` + xmlEscape(name) + `"`)
		if len(c.Contexts) > 0 {
			ctxs := make([]string, len(c.Contexts))
			for i, ctx := range c.Contexts {
				ctxs[i] = string(ctx)
			}
			b.WriteString(` context="` + xmlEscape(strings.Join(ctxs, ",")) + `"`)
		}
		if c.Filter != "" {
			b.WriteString(` filter="` + xmlEscape(c.Filter) + `"`)
		}
		b.WriteString("/>\n")
	}
	b.WriteString("  </w:capabilities>\n")
	if len(r.cfg.Credentials) > 0 {
		b.WriteString("  <w:consumer_keys>\n")
		for _, cred := range r.cfg.Credentials {
			b.WriteString(`    <w:consumer_key for="` + xmlEscape(cred.RPCServerURL) + `">` +
				xmlEscape(cred.ConsumerKey) + `</w:consumer_key>` + "\n")
		}
		b.WriteString("  </w:consumer_keys>\n")
	}
	b.WriteString("</w:robot>\n")
	return b.String()
}

func xmlEscape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// handleVerifyToken answers the wave server's registration challenge with
// the configured verification token.
func (r *Robot) handleVerifyToken(w http.ResponseWriter, req *http.Request) {
	if r.cfg.VerificationToken == "" {
		r.logger.Error("verification token requested but not configured")
		r.fail(w, "verify_token", http.StatusInternalServerError)
		return
	}
	if r.cfg.SecurityToken != "" && req.URL.Query().Get("st") != r.cfg.SecurityToken {
		r.fail(w, "verify_token", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, r.cfg.VerificationToken)
	r.metrics.RecordRequest("verify_token", true)
}

func (r *Robot) fail(w http.ResponseWriter, route string, status int) {
	http.Error(w, http.StatusText(status), status)
	r.metrics.RecordRequest(route, false)
}
