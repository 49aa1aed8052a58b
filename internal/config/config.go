// Package config reads the server settings from a YAML file, the
// environment and the command line, in that order of precedence.
package config

import (
	"flag"
	"net"
	"os"
	"strings"

	"github.com/ansel1/merry"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           int      `yaml:"port" env:"SE2CALC_PORT"`
	DB             string   `yaml:"db" env:"SE2CALC_DB"`
	TemplateDir    string   `yaml:"template_dir" env:"SE2CALC_TEMPLATE_DIR"` // empty: embedded templates
	CacheTemplates bool     `yaml:"cache_templates" env:"SE2CALC_CACHE_TEMPLATES"`
	EditNets       []string `yaml:"edit_nets" env:"SE2CALC_EDIT_NETS" envSeparator:","`
	TrustedProxies []string `yaml:"trusted_proxies" env:"SE2CALC_TRUSTED_PROXIES" envSeparator:","` // may set X-Forwarded-For
	SitePrefix     string   `yaml:"site_prefix" env:"SE2CALC_SITE_PREFIX"`
	Seed           string   `yaml:"seed" env:"SE2CALC_SEED"`
	LogLevel       string   `yaml:"log_level" env:"SE2CALC_LOG_LEVEL"`
}

func Default() Config {
	return Config{
		Port:           2000,
		DB:             "se2calc.db",
		CacheTemplates: true,
		SitePrefix:     "http://localhost:2000",
	}
}

// Load starts from Default, then applies the file (if fileName is not
// empty) and the SE2CALC_* environment variables.
func Load(fileName string) (Config, error) {
	c := Default()
	if fileName != "" {
		data, err := os.ReadFile(fileName)
		if err != nil {
			return c, merry.Prepend(err, "config file")
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, merry.Prependf(err, "config file %s", fileName)
		}
	}
	if err := env.Parse(&c); err != nil {
		return c, merry.Prepend(err, "parse env")
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return merry.Errorf("port %d out of range", c.Port)
	}
	if c.DB == "" {
		return merry.New("db file name is required")
	}
	if c.TemplateDir != "" {
		if st, err := os.Stat(c.TemplateDir); err != nil || !st.IsDir() {
			return merry.Errorf("template_dir %q is not a directory", c.TemplateDir)
		}
	}
	if _, err := c.ParseEditNets(); err != nil {
		return err
	}
	if _, err := c.ParseTrustedProxies(); err != nil {
		return err
	}
	return nil
}

func parseNets(key string, cidrs []string) ([]*net.IPNet, error) {
	var result []*net.IPNet
	for _, n := range cidrs {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		_, ipnet, err := net.ParseCIDR(n)
		if err != nil {
			return nil, merry.Prepend(err, key)
		}
		result = append(result, ipnet)
	}
	return result, nil
}

// ParseEditNets returns the networks allowed to edit. Empty means no
// restriction.
func (c Config) ParseEditNets() ([]*net.IPNet, error) {
	return parseNets("edit_nets", c.EditNets)
}

// ParseTrustedProxies returns the networks of reverse proxies whose
// X-Forwarded-For header is believed. Empty means the header is ignored.
func (c Config) ParseTrustedProxies() ([]*net.IPNet, error) {
	return parseNets("trusted_proxies", c.TrustedProxies)
}

// Flags are the command line overrides. Only flags that are given on the
// command line replace values from file or environment.
type Flags struct {
	fs *flag.FlagSet

	ConfigFile     string
	port           int
	db             string
	templateDir    string
	cacheTemplates bool
	editNets       string
	trustedProxies string
	sitePrefix     string
	seed           string
	logLevel       string
}

func NewFlags(fs *flag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigFile, "config", "", "YAML configuration file")
	fs.IntVar(&f.port, "port", d.Port, "Port to serve from")
	fs.StringVar(&f.db, "db", d.DB, "SQLite database file")
	fs.StringVar(&f.templateDir, "templatedir", "", "Directory with templates; embedded ones if empty")
	fs.BoolVar(&f.cacheTemplates, "cache-templates", d.CacheTemplates, "Cache templates. False for online editing.")
	fs.StringVar(&f.editNets, "edit-permission-nets", "", "Comma separated list of networks (CIDR format IP-Addr/network) that are allowed to edit content")
	fs.StringVar(&f.trustedProxies, "trusted-proxies", "", "Comma separated list of networks (CIDR) of reverse proxies whose X-Forwarded-For header is trusted")
	fs.StringVar(&f.sitePrefix, "site-prefix", d.SitePrefix, "Site prefix for the sitemap")
	fs.StringVar(&f.seed, "seed", "", "YAML file with ores, components and blocks to load at startup")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: err, wrn, inf or dbg")
	return f
}

func (f *Flags) Apply(c *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			c.Port = f.port
		case "db":
			c.DB = f.db
		case "templatedir":
			c.TemplateDir = f.templateDir
		case "cache-templates":
			c.CacheTemplates = f.cacheTemplates
		case "edit-permission-nets":
			c.EditNets = strings.Split(f.editNets, ",")
		case "trusted-proxies":
			c.TrustedProxies = strings.Split(f.trustedProxies, ",")
		case "site-prefix":
			c.SitePrefix = f.sitePrefix
		case "seed":
			c.Seed = f.seed
		case "log-level":
			c.LogLevel = f.logLevel
		}
	})
}
