package apiclient

import (
	"encoding/json"
	"fmt"
)

// StatusOK is the status value of a successful response.
const StatusOK = "ok"

// Response is the envelope every registry endpoint answers with.
type Response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`

	// HTTPStatus is the status code the envelope came with.
	HTTPStatus int `json:"-"`
}

// OK reports whether the API accepted the request.
func (r *Response) OK() bool {
	return r != nil && r.Status == StatusOK
}

// DecodeData unmarshals the data member into v.
func (r *Response) DecodeData(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("%w: no data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("%w: decode data: %v", ErrMalformedResponse, err)
	}
	return nil
}

// ParseResponse decodes a response envelope. A body that is not a JSON
// object or that has no status member is rejected.
func ParseResponse(body []byte) (*Response, error) {
	var raw struct {
		Status *string          `json:"status"`
		Data   json.RawMessage  `json:"data"`
		Error  *json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.Status == nil {
		return nil, fmt.Errorf("%w: missing status", ErrMalformedResponse)
	}
	resp := &Response{Status: *raw.Status}
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		resp.Data = raw.Data
	}
	if raw.Error != nil {
		// error is usually a string, but some endpoints send an object.
		var s string
		if err := json.Unmarshal(*raw.Error, &s); err == nil {
			resp.Error = s
		} else if string(*raw.Error) != "null" {
			resp.Error = string(*raw.Error)
		}
	}
	return resp, nil
}
