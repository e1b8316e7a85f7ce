package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runSetupLogger(t *testing.T, level string) error {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("log-level", level, "")
	return setupLogger(cli.NewContext(cli.NewApp(), set, nil))
}

func TestSetupLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		assert.NoError(t, runSetupLogger(t, level), "level %s", level)
	}
	err := runSetupLogger(t, "verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestSheetDate(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("date", "2026-08-28", "")
	date, err := sheetDate(cli.NewContext(cli.NewApp(), set, nil))
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", date)

	bad := flag.NewFlagSet("test", flag.ContinueOnError)
	bad.String("date", "28/08/2026", "")
	_, err = sheetDate(cli.NewContext(cli.NewApp(), bad, nil))
	assert.Error(t, err)

	empty := flag.NewFlagSet("test", flag.ContinueOnError)
	empty.String("date", "", "")
	date, err = sheetDate(cli.NewContext(cli.NewApp(), empty, nil))
	require.NoError(t, err)
	assert.Equal(t, todayISO(), date)
}

func TestSniffMime(t *testing.T) {
	assert.Equal(t, "image/jpeg", sniffMime("a.jpg", nil))
	assert.Equal(t, "image/png", sniffMime("b.PNG", nil))
	assert.Equal(t, "image/webp", sniffMime("c.webp", nil))
}
