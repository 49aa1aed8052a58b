package main

import (
	"flag"
	"net"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hzeller/se2calc/internal/config"
	"github.com/hzeller/se2calc/internal/pkg"
)

func flagsFor(t *testing.T, args ...string) *config.Flags {
	fs := flag.NewFlagSet("se2calc", flag.ContinueOnError)
	flags := config.NewFlags(fs)
	require.NoError(t, fs.Parse(args))
	return flags
}

func TestRunRejectsBadConfig(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "se2calc.db")
	err := run(flagsFor(t, "-db", dbFile, "-trusted-proxies", "10.0.0.1"))
	assert.ErrorContains(t, err, "trusted_proxies")
}

func TestRunReturnsServeError(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	dbFile := filepath.Join(t.TempDir(), "se2calc.db")
	err = run(flagsFor(t, "-db", dbFile, "-port", strconv.Itoa(port)))
	require.Error(t, err, "port is taken")

	// The database was set up and is usable again after run returned.
	db, err := pkg.OpenSqliteDBx(dbFile)
	require.NoError(t, err)
	defer db.Close()
	var tables int
	require.NoError(t, db.Get(&tables, "SELECT count(*) FROM sqlite_master WHERE type = 'table'"))
	assert.NotZero(t, tables)
}
