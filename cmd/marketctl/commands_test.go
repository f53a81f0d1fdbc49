package main

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCmd(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := &classifyCmd{out: &out}
	f := flag.NewFlagSet("classify", flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse([]string{"BTC", "AAPL", "^GSPC"}))

	status := cmd.Execute(context.Background(), f)
	assert.Equal(t, subcommands.ExitSuccess, status)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "BTC\tcrypto\tBTC-USD\t"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "AAPL\tstock\tAAPL\t"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "^GSPC\tindex\t^GSPC\t"), lines[2])
}

func TestClassifyCmd_NoArgs(t *testing.T) {
	t.Parallel()

	cmd := &classifyCmd{out: &bytes.Buffer{}}
	f := flag.NewFlagSet("classify", flag.ContinueOnError)
	assert.Equal(t, subcommands.ExitUsageError, cmd.Execute(context.Background(), f))
}

func TestDeleteCmd_RequiresSymbol(t *testing.T) {
	t.Parallel()

	cmd := &deleteCmd{}
	f := flag.NewFlagSet("delete", flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(nil))
	assert.Equal(t, subcommands.ExitUsageError, cmd.Execute(context.Background(), f))
}

func TestCommands_UniqueNames(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, c := range commands {
		assert.False(t, seen[c.Name()], c.Name())
		seen[c.Name()] = true
	}
	assert.Len(t, seen, 6)
}
