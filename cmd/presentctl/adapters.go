package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/present/backend"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List the adapters of every registered backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listAdapters()
	},
}

type adapterInfo struct {
	Ordinal     int    `yaml:"ordinal"`
	Name        string `yaml:"name"`
	Monitor     uint64 `yaml:"monitor"`
	HardwareTnL bool   `yaml:"hardwareTnL"`
	MaxTexture  int    `yaml:"maxTexture,omitempty"`
	Display     string `yaml:"display,omitempty"`
	Error       string `yaml:"error,omitempty"`
}

type backendInfo struct {
	Backend  string        `yaml:"backend"`
	Error    string        `yaml:"error,omitempty"`
	Adapters []adapterInfo `yaml:"adapters,omitempty"`
}

func describeBackend(name string) backendInfo {
	info := backendInfo{Backend: name}
	b := backend.Get(name)
	if b == nil {
		info.Error = "not registered"
		return info
	}
	if err := b.Init(); err != nil {
		info.Error = err.Error()
		return info
	}
	defer b.Close()

	for _, a := range b.Adapters() {
		ai := adapterInfo{Ordinal: a.Ordinal(), Name: a.Name(), Monitor: uint64(a.Monitor())}
		caps, err := a.Caps()
		if err != nil {
			ai.Error = err.Error()
		} else {
			ai.HardwareTnL = caps.HardwareTransformAndLight
			ai.MaxTexture = caps.MaxTextureWidth
		}
		if mode, err := a.DisplayMode(); err == nil {
			ai.Display = mode.Format.String()
		}
		info.Adapters = append(info.Adapters, ai)
	}
	return info
}

func listAdapters() error {
	var out []backendInfo
	for _, name := range backend.Available() {
		logger.Debug("probing backend", "backend", name)
		out = append(out, describeBackend(name))
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
