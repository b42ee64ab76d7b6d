package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
)

// Transcribe uploads an encoded recording as a multipart file and returns
// the transcript. Transport failures and non-2xx are hard errors; a 2xx
// with success=false is returned to the caller to classify as a soft
// failure.
func (c *Client) Transcribe(ctx context.Context, audioData []byte, filename string) (TranscriptionResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return TranscriptionResult{}, err
	}
	if _, err := part.Write(audioData); err != nil {
		return TranscriptionResult{}, err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.url("/audio/transcribe", nil), &body)
	if err != nil {
		return TranscriptionResult{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	raw, err := c.do(req)
	if err != nil {
		return TranscriptionResult{}, err
	}

	var result TranscriptionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return TranscriptionResult{}, fmt.Errorf("transcribe response parse error: %w", err)
	}
	return result, nil
}

// Synthesize asks the backend to speak text and returns the raw audio
// container bytes.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("text", text)
	writer.WriteField("voice", voice)
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.url("/audio/synthesize", nil), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}
