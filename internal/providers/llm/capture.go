package llm

import (
	"bytes"
	"io"
	"net/http"
	"strings"
)

var redactedHeaders = map[string]bool{
	"authorization":  true,
	"x-api-key":      true,
	"x-goog-api-key": true,
	"api-key":        true,
}

// captureExchange is the body of the per-request SDK middleware: it copies
// the outgoing request and the response into ex and hands the caller an
// unread response body.
func captureExchange(ex *Exchange, req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	ex.URL = req.URL.String()
	ex.RequestHeaders = flattenHeaders(req.Header)
	if req.Body != nil {
		raw, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		ex.RequestBody = string(raw)
		req.Body = io.NopCloser(bytes.NewReader(raw))
	}

	resp, err := next(req)
	if resp == nil {
		return resp, err
	}
	ex.StatusCode = resp.StatusCode
	ex.ResponseHeaders = resp.Header.Clone()
	if resp.Body != nil {
		raw, rerr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		ex.ResponseBody = string(raw)
		resp.Body = io.NopCloser(bytes.NewReader(raw))
		if rerr != nil && err == nil {
			err = rerr
		}
	}
	return resp, err
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if redactedHeaders[strings.ToLower(k)] {
			out[k] = "REDACTED"
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}
