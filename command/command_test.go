package command

import (
	"strings"
	"testing"

	"github.com/gr-butler/wxnode/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	cmd, err := ParsePath("hunter2/t/15", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, VerbInterval, cmd.Verb)
	assert.Equal(t, "15", cmd.Param)

	cmd, err = ParsePath("hunter2/r", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, VerbRestart, cmd.Verb)
	assert.Equal(t, "", cmd.Param)

	_, err = ParsePath("wrongpw/t/15", "hunter2")
	assert.Error(t, err)

	_, err = ParsePath("hunter2", "hunter2")
	assert.Error(t, err)

	_, err = ParsePath("hunter2/tt/15", "hunter2")
	assert.Error(t, err)
}

func TestParseBody(t *testing.T) {
	cmd, ok, err := ParseBody("!t=30\n")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, VerbInterval, cmd.Verb)
	assert.Equal(t, "30", cmd.Param)

	cmd, ok, err = ParseBody("!r")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, VerbRestart, cmd.Verb)

	// No pending directive at all.
	_, ok, err = ParseBody("")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseBody("reset please")
	assert.Error(t, err)

	_, _, err = ParseBody("!")
	assert.Error(t, err)
}

func TestApplyAcceptanceTable(t *testing.T) {
	cfg := store.NewMem()
	p := NewProcessor(cfg)

	// t with a 2 digit parameter: accepted, field updated.
	out, err := p.Apply(Command{Verb: VerbInterval, Param: "15"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out)
	assert.Equal(t, "15", cfg.Read(store.FieldReportInterval))

	// t over the 3 digit bound: rejected, field unchanged.
	_, err = p.Apply(Command{Verb: VerbInterval, Param: "10000"})
	assert.Error(t, err)
	assert.Equal(t, "15", cfg.Read(store.FieldReportInterval))

	// t must be numeric.
	_, err = p.Apply(Command{Verb: VerbInterval, Param: "9a"})
	assert.Error(t, err)
	assert.Equal(t, "15", cfg.Read(store.FieldReportInterval))

	// unknown verb: rejected.
	_, err = p.Apply(Command{Verb: 'x', Param: "1"})
	assert.Error(t, err)

	// restart carries no store mutation.
	out, err = p.Apply(Command{Verb: VerbRestart})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRestart, out)

	// set verbs write their fields.
	out, err = p.Apply(Command{Verb: VerbWifiName, Param: "barnfield"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out)
	assert.Equal(t, "barnfield", cfg.Read(store.FieldWifiName))

	out, err = p.Apply(Command{Verb: VerbURL, Param: "10.0.0.2:80/weather/submit.php"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out)
	assert.Equal(t, "10.0.0.2:80/weather/submit.php", cfg.Read(store.FieldCollectorURL))

	// oversized credential: rejected, store untouched.
	_, err = p.Apply(Command{Verb: VerbWifiCred, Param: strings.Repeat("k", 65)})
	assert.Error(t, err)
	assert.Equal(t, "", cfg.Read(store.FieldWifiCredential))
}
