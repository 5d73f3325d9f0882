package testutil

import (
	"bytes"
	"encoding/json"
)

// Frame renders a progress frame the way the backend sends it.
func Frame(kind string, data map[string]any) string {
	payload, _ := json.Marshal(map[string]any{"type": kind, "data": data})
	return string(payload)
}

func StatusFrame(status, message string) string {
	return Frame("status", map[string]any{"status": status, "message": message})
}

func CompletedFrame(runID string) string {
	return Frame("completed", map[string]any{"run_id": runID, "report_available": true})
}

func ErrorFrame(message string) string {
	return Frame("error", map[string]any{"message": message})
}

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
