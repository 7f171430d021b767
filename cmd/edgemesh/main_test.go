package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"funkhouse.rs/edgemesh/internal/keys"
	"funkhouse.rs/edgemesh/internal/model"
)

func writeConfig(t *testing.T, cfg *model.Config) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	key, err := keys.Generate("node-a")
	require.NoError(t, err)
	return &model.Config{
		AuthKey: key,
		Listen:  model.ListenConfig{DNSAddr: "127.0.0.1:5300", ControlAddr: "127.0.0.1:5301"},
		Peers:   []model.Peer{{Key: key, IPs: nil}},
	}
}

func TestConfigCheckValidConfig(t *testing.T) {
	path := writeConfig(t, testConfig(t))

	cmd := configCheckCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
}

func TestConfigCheckMissingFile(t *testing.T) {
	cmd := configCheckCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, cmd.Execute())
}

func TestKeyGenerateProducesJWKDocument(t *testing.T) {
	cmd := keyGenerateCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"node-b"})
	require.NoError(t, cmd.Execute())
}

func TestServeRejectsUnknownPeer(t *testing.T) {
	path := writeConfig(t, testConfig(t))

	cmd := serveCmd()
	cmd.SetArgs([]string{path, "no-such-peer"})
	assert.Error(t, cmd.Execute())
}
