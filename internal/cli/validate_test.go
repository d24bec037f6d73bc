package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
	Error  *ResponseError   `json:"error"`
}

func TestValidateValidContent(t *testing.T) {
	stdout, _, err := execute(t, NewValidateCommand, "text", "testdata/duel.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ testdata/duel.yaml: Cellar Duel (1 players, 1 enemies)")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	stdout, _, err := execute(t, NewValidateCommand, "text", "testdata/broken.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, stdout, "✗ testdata/broken.yaml")
	assert.Contains(t, stdout, "E201")
	assert.Contains(t, stdout, "E203")
	assert.Contains(t, stdout, "E204")
}

func TestValidateJSON(t *testing.T) {
	stdout, _, err := execute(t, NewValidateCommand, "json", "testdata/duel.yaml", "testdata/broken.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidContent, resp.Error.Code)

	require.Len(t, resp.Data.Files, 2)
	assert.False(t, resp.Data.Valid)
	assert.True(t, resp.Data.Files[0].Valid)
	assert.Equal(t, "Cellar Duel", resp.Data.Files[0].Name)
	assert.False(t, resp.Data.Files[1].Valid)

	var codes []string
	for _, e := range resp.Data.Files[1].Errors {
		codes = append(codes, e.Code)
	}
	assert.ElementsMatch(t, []string{"E201", "E203", "E204"}, codes)
}

func TestValidateMissingFile(t *testing.T) {
	_, _, err := execute(t, NewValidateCommand, "text", "testdata/duel.yaml", "testdata/missing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 content file(s) not found")
}

func TestValidateCUEPositions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	src := "name: \"Bad\"\nplayers: [{name: \"Hero\", health: \"lots\", attacks: []}]\nenemies: [{name: \"Rat\", health: 3, attacks: []}]\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	stdout, _, err := execute(t, NewValidateCommand, "json", path)
	require.Error(t, err)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Files, 1)
	require.NotEmpty(t, resp.Data.Files[0].Errors)
	assert.Equal(t, "E009", resp.Data.Files[0].Errors[0].Code)
}

func TestValidateRequiresArgs(t *testing.T) {
	_, _, err := execute(t, NewValidateCommand, "text")
	require.Error(t, err)
}
