package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	name := filepath.Join(t.TempDir(), "se2calc.yaml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadPrecedence(t *testing.T) {
	name := writeFile(t, `
port: 8080
db: from-file.db
edit_nets: [10.0.0.0/8]
seed: seed.yaml
`)
	t.Setenv("SE2CALC_DB", "from-env.db")

	c, err := Load(name)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "from-env.db", c.DB)
	assert.Equal(t, []string{"10.0.0.0/8"}, c.EditNets)
	assert.Equal(t, "seed.yaml", c.Seed)
	assert.True(t, c.CacheTemplates, "default kept")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := NewFlags(fs)
	require.NoError(t, fs.Parse([]string{"-db", "from-flag.db", "-edit-permission-nets", "127.0.0.1/32,::1/128"}))
	flags.Apply(&c)
	assert.Equal(t, "from-flag.db", c.DB)
	assert.Equal(t, 8080, c.Port, "unset flag does not override")
	assert.Equal(t, []string{"127.0.0.1/32", "::1/128"}, c.EditNets)

	nets, err := c.ParseEditNets()
	require.NoError(t, err)
	require.Len(t, nets, 2)
}

func TestTrustedProxies(t *testing.T) {
	c := Default()
	proxies, err := c.ParseTrustedProxies()
	require.NoError(t, err)
	assert.Empty(t, proxies, "no proxy trusted by default")

	t.Setenv("SE2CALC_TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1/32")
	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1/32"}, c.TrustedProxies)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := NewFlags(fs)
	require.NoError(t, fs.Parse([]string{"-trusted-proxies", "127.0.0.1/32"}))
	flags.Apply(&c)
	proxies, err = c.ParseTrustedProxies()
	require.NoError(t, err)
	require.Len(t, proxies, 1)
	assert.Equal(t, "127.0.0.1/32", proxies[0].String())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "port: [nope"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Port = 0
	assert.Error(t, c.Validate())

	c = Default()
	c.DB = ""
	assert.Error(t, c.Validate())

	c = Default()
	c.EditNets = []string{"not-a-net"}
	assert.Error(t, c.Validate())

	c = Default()
	c.TrustedProxies = []string{"10.0.0.1"}
	assert.Error(t, c.Validate(), "proxies need a prefix length")

	c = Default()
	c.TemplateDir = filepath.Join(t.TempDir(), "nope")
	assert.Error(t, c.Validate())

	c = Default()
	c.EditNets = []string{" ", ""}
	nets, err := c.ParseEditNets()
	require.NoError(t, err)
	assert.Empty(t, nets)
}
