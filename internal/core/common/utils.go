package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MaxBodyBytes bounds how much of an API response is read. Fifty full
// Wikidata entities fit comfortably below it.
const MaxBodyBytes = 32 << 20

// DecodeJSON reads at most MaxBodyBytes from r and unmarshals them into a T.
// Decode errors quote the start of the payload to make API changes visible
// in logs.
func DecodeJSON[T any](r io.Reader) (T, error) {
	var zero T

	data, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return zero, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > MaxBodyBytes {
		return zero, fmt.Errorf("response body exceeds %d bytes", MaxBodyBytes)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return zero, fmt.Errorf("no JSON object found in response (missing '{'): %s", snippet(data))
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, snippet(data))
	}

	return result, nil
}

func snippet(data []byte) string {
	const max = 200
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
