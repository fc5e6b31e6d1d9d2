package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/gesturevol/internal/plugin"
)

// PluginMixer forwards volume changes to an external plugin.
type PluginMixer struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
}

// NewPluginMixer creates a PluginMixer for p.
func NewPluginMixer(p *plugin.Plugin, executor *plugin.Executor) *PluginMixer {
	return &PluginMixer{plugin: p, executor: executor}
}

// Name implements Mixer.
func (m *PluginMixer) Name() string { return "plugin:" + m.plugin.Manifest.Name }

// SetScalar implements Mixer.
func (m *PluginMixer) SetScalar(ctx context.Context, v float64) error {
	if err := CheckScalar(v); err != nil {
		return err
	}
	params, err := json.Marshal(plugin.VolumeParams{Level: v})
	if err != nil {
		return err
	}
	_, err = m.call(ctx, &plugin.Request{
		Action: plugin.ActionVolumeSet,
		Source: "gesture",
		Config: m.plugin.Manifest.Config,
		Params: params,
	})
	return err
}

// Scalar implements Mixer.
func (m *PluginMixer) Scalar(ctx context.Context) (float64, error) {
	if !m.plugin.Supports(plugin.ActionVolumeGet) {
		return 0, fmt.Errorf("plugin %s does not support %s", m.plugin.Manifest.Name, plugin.ActionVolumeGet)
	}
	resp, err := m.call(ctx, &plugin.Request{
		Action: plugin.ActionVolumeGet,
		Source: "gesture",
		Config: m.plugin.Manifest.Config,
	})
	if err != nil {
		return 0, err
	}
	var p plugin.VolumeParams
	if err := json.Unmarshal(resp.Data, &p); err != nil {
		return 0, fmt.Errorf("decode volume: %w", err)
	}
	return p.Level, nil
}

func (m *PluginMixer) call(ctx context.Context, req *plugin.Request) (*plugin.Response, error) {
	resp, err := m.executor.Execute(ctx, m.plugin, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("plugin %s: %s: %w", m.plugin.Manifest.Name, req.Action, errors.New(msg))
	}
	return resp, nil
}
