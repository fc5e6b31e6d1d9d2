// Package main provides the system-control volume plugin.
// It sets and reads the master output volume with osascript on macOS and
// amixer on Linux.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ayusman/gesturevol/internal/plugin"
)

// actionHandler handles one action and returns optional response data.
type actionHandler func(b backend, params json.RawMessage) (any, error)

var actionHandlers = map[string]actionHandler{
	plugin.ActionVolumeSet:  volumeSet,
	plugin.ActionVolumeGet:  volumeGet,
	plugin.ActionVolumeMute: volumeMute,
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(plugin.Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	writeResponse(handle(backendFor(), req))
}

func handle(b backend, req plugin.Request) plugin.Response {
	handler, ok := actionHandlers[req.Action]
	if !ok {
		return plugin.Response{Error: fmt.Sprintf("unknown action: %s", req.Action)}
	}
	if b == nil {
		return plugin.Response{Error: "no volume backend for this platform"}
	}

	data, err := handler(b, req.Params)
	if err != nil {
		return plugin.Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)}
	}

	resp := plugin.Response{Success: true}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return plugin.Response{Error: fmt.Sprintf("encode data: %v", err)}
		}
		resp.Data = raw
	}
	return resp
}

func writeResponse(resp plugin.Response) {
	_ = json.NewEncoder(os.Stdout).Encode(resp)
}

func volumeSet(b backend, params json.RawMessage) (any, error) {
	var p plugin.VolumeParams
	if len(params) == 0 {
		return nil, fmt.Errorf("missing params")
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if p.Level < 0 || p.Level > 1 {
		return nil, fmt.Errorf("level %v outside [0, 1]", p.Level)
	}
	return nil, b.SetPercent(percent(p.Level))
}

func volumeGet(b backend, _ json.RawMessage) (any, error) {
	pct, err := b.Percent()
	if err != nil {
		return nil, err
	}
	return plugin.VolumeParams{Level: float64(pct) / 100}, nil
}

func volumeMute(b backend, _ json.RawMessage) (any, error) {
	return nil, b.ToggleMute()
}

// percent converts a [0, 1] scalar to a rounded integer percent.
func percent(level float64) int {
	return int(level*100 + 0.5)
}
