package oauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360/waverobot/errors"
)

// OAuth protocol parameter names.
const (
	ParamBodyHash        = "oauth_body_hash"
	ParamConsumerKey     = "oauth_consumer_key"
	ParamNonce           = "oauth_nonce"
	ParamSignature       = "oauth_signature"
	ParamSignatureMethod = "oauth_signature_method"
	ParamTimestamp       = "oauth_timestamp"
	ParamVersion         = "oauth_version"
)

const (
	signatureMethod = "HMAC-SHA1"
	oauthVersion    = "1.0"

	// consumerKeyDomain namespaces outbound consumer keys.
	consumerKeyDomain = "google.com"

	// defaultMaxAge is how stale an inbound timestamp may be.
	defaultMaxAge = 5 * time.Minute
)

// BodyHash returns the base64 SHA-1 digest that binds a request body to
// its signature.
func BodyHash(body []byte) string {
	sum := sha1.Sum(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Signer produces signed request URLs for the active API.
type Signer struct {
	consumerKey    string
	consumerSecret string

	now   func() time.Time
	nonce func() string
}

// NewSigner builds a signer from the registered consumer credentials. The
// key is the bare registered key; the domain prefix is applied during
// signing.
func NewSigner(consumerKey, consumerSecret string) *Signer {
	return &Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		now:            time.Now,
		nonce:          uuid.NewString,
	}
}

// SignedURL returns rpcURL with the full OAuth parameter set, including
// the signature, appended to the query string. The body is not modified;
// it is bound via oauth_body_hash.
func (s *Signer) SignedURL(method, rpcURL string, body []byte) (string, error) {
	base, err := url.Parse(rpcURL)
	if err != nil {
		return "", errors.WrapArgument(err, "Signer", "SignedURL", "rpc URL parse")
	}

	params := url.Values{}
	params.Set(ParamBodyHash, BodyHash(body))
	params.Set(ParamConsumerKey, consumerKeyDomain+":"+s.consumerKey)
	params.Set(ParamNonce, s.nonce())
	params.Set(ParamSignatureMethod, signatureMethod)
	params.Set(ParamTimestamp, strconv.FormatInt(s.now().Unix(), 10))
	params.Set(ParamVersion, oauthVersion)

	signature := sign(method, base, params, s.consumerSecret)
	params.Set(ParamSignature, signature)

	query := base.Query()
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	base.RawQuery = query.Encode()
	return base.String(), nil
}

// Validator checks inbound signed requests against one consumer
// credential.
type Validator struct {
	consumerKey    string
	consumerSecret string
	maxAge         time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// NewValidator builds a validator for the registered consumer credential.
// A nil logger falls back to slog.Default.
func NewValidator(consumerKey, consumerSecret string, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		maxAge:         defaultMaxAge,
		now:            time.Now,
		logger:         logger,
	}
}

// Validate checks the body hash, timestamp freshness, and signature of an
// inbound request. requestURL is the URL the request was addressed to,
// without its query string; params carries the request's query parameters.
// All failures are auth-class errors with generic messages.
func (v *Validator) Validate(requestURL string, params url.Values, body []byte) error {
	base, err := url.Parse(requestURL)
	if err != nil {
		return errors.WrapAuth(errors.ErrSignatureInvalid, "Validator", "Validate", "request URL parse")
	}

	wantHash := BodyHash(body)
	gotHash := params.Get(ParamBodyHash)
	if subtle.ConstantTimeCompare([]byte(wantHash), []byte(gotHash)) != 1 {
		v.logger.Warn("request body hash mismatch",
			"expected", wantHash, "provided", gotHash)
		return errors.WrapAuth(errors.ErrBodyHashMismatch, "Validator", "Validate", "body hash check")
	}

	ts, err := strconv.ParseInt(params.Get(ParamTimestamp), 10, 64)
	if err != nil {
		v.logger.Warn("request timestamp unparseable", "timestamp", params.Get(ParamTimestamp))
		return errors.WrapAuth(errors.ErrTimestampStale, "Validator", "Validate", "timestamp check")
	}
	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.maxAge || age < -v.maxAge {
		v.logger.Warn("request timestamp outside freshness window",
			"timestamp", ts, "age", age.String())
		return errors.WrapAuth(errors.ErrTimestampStale, "Validator", "Validate", "timestamp check")
	}

	if params.Get(ParamConsumerKey) != v.consumerKey {
		v.logger.Warn("unknown consumer key", "key", params.Get(ParamConsumerKey))
		return errors.WrapAuth(errors.ErrSignatureInvalid, "Validator", "Validate", "consumer key check")
	}

	unsigned := url.Values{}
	for key, values := range params {
		if key == ParamSignature {
			continue
		}
		for _, value := range values {
			unsigned.Add(key, value)
		}
	}
	want := sign("POST", base, unsigned, v.consumerSecret)
	got := params.Get(ParamSignature)
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		v.logger.Warn("request signature mismatch")
		return errors.WrapAuth(errors.ErrSignatureInvalid, "Validator", "Validate", "signature check")
	}
	return nil
}

// sign computes the HMAC-SHA1 signature over the RFC 5849 base string for
// the given method, URL, and parameter set.
func sign(method string, base *url.URL, params url.Values, consumerSecret string) string {
	baseString := signatureBaseString(method, base, params)
	// 1-legged: no token, so the key is secret&.
	key := percentEncode(consumerSecret) + "&"
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signatureBaseString builds method&encoded-url&encoded-sorted-params.
func signatureBaseString(method string, base *url.URL, params url.Values) string {
	type pair struct{ key, value string }
	var pairs []pair
	for key, values := range params {
		for _, value := range values {
			pairs = append(pairs, pair{percentEncode(key), percentEncode(value)})
		}
	}
	for key, values := range base.Query() {
		for _, value := range values {
			pairs = append(pairs, pair{percentEncode(key), percentEncode(value)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(p.value)
	}

	return strings.ToUpper(method) + "&" +
		percentEncode(baseURL(base)) + "&" +
		percentEncode(sb.String())
}

// baseURL renders the scheme://host/path part with a lowercase scheme and
// host and without default ports, per RFC 5849 section 3.4.1.2.
func baseURL(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, u.EscapedPath())
}

// percentEncode applies the RFC 5849 variant of percent-encoding: only
// ALPHA, DIGIT, "-", ".", "_", "~" stay literal.
func percentEncode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			sb.WriteByte(c)
		default:
			sb.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return sb.String()
}
