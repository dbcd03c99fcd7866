package testpayloads

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// verifyResponse checks the status, content type and a minimal body shape.
func verifyResponse(tc Case, resp *http.Response, body []byte) error {
	if resp.StatusCode != tc.WantStatus {
		return fmt.Errorf("status %d, want %d: %s", resp.StatusCode, tc.WantStatus, truncate(body))
	}
	if resp.Header.Get("X-Request-ID") == "" {
		return fmt.Errorf("missing X-Request-ID header")
	}
	if tc.WantContentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("content type: %w", err)
	}
	if mediaType != tc.WantContentType {
		return fmt.Errorf("content type %q, want %q", mediaType, tc.WantContentType)
	}

	switch mediaType {
	case "image/png":
		if !bytes.HasPrefix(body, pngMagic) {
			return fmt.Errorf("body is not a PNG")
		}
	case "application/json":
		var v map[string]any
		if err := json.Unmarshal(body, &v); err != nil {
			return fmt.Errorf("invalid json: %w", err)
		}
		if s, ok := v["image_base64"].(string); ok {
			raw, err := base64.StdEncoding.DecodeString(s)
			if err != nil || !bytes.HasPrefix(raw, pngMagic) {
				return fmt.Errorf("image_base64 is not a PNG")
			}
		}
	case "text/plain":
		if len(bytes.TrimSpace(body)) == 0 {
			return fmt.Errorf("empty text body")
		}
	}
	return nil
}

func truncate(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
