package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	SetVersion(v)
	t.Cleanup(func() {
		version = original
		resetFlags(rootCmd)
	})
}

func TestVersionCmd(t *testing.T) {
	withVersion(t, "1.4.2")

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "geovis version 1.4.2 ("+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+")\n", out)
}

func TestVersionCmd_JSON(t *testing.T) {
	withVersion(t, "dev")

	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dev", got["version"])
	assert.Equal(t, runtime.GOOS, got["os"])
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	withVersion(t, "dev")

	_, err := execute(t, "version", "extra")
	assert.Error(t, err)
}
