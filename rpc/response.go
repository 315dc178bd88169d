package rpc

// Well-known keys inside a response's data map.
const (
	DataWaveID      = "waveId"
	DataWaveletID   = "waveletId"
	DataBlipID      = "blipId"
	DataWaveletData = "waveletData"
	DataBlips       = "blips"
	DataNewBlipID   = "newBlipId"
	DataVersion     = "version"
)

// ResponseError is the error member of a failed JSON-RPC response.
type ResponseError struct {
	Message string `json:"message"`
}

// Response is one JSON-RPC response from the gateway. A submission of n
// operations yields n responses in submission order.
type Response struct {
	ID    string         `json:"id"`
	Data  map[string]any `json:"data"`
	Error *ResponseError `json:"error,omitempty"`
}

// IsError reports whether the gateway rejected the operation.
func (r *Response) IsError() bool { return r.Error != nil }

// ErrorMessage returns the gateway's error message, or "".
func (r *Response) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Message
}

// StringData returns the named data value when it is a string.
func (r *Response) StringData(key string) string {
	s, _ := r.Data[key].(string)
	return s
}
