package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/pokeflow/internal/domain"
)

const eeveeChain = `{
	"id": 67,
	"chain": {
		"species": {"name": "eevee"},
		"evolves_to": [
			{"species": {"name": "vaporeon"}, "evolves_to": []},
			{"species": {"name": "jolteon"}, "evolves_to": []}
		]
	}
}`

const deepNode = `{
	"species": {"name": "A"},
	"evolves_to": [{"species": {"name": "B"}, "evolves_to": [
		{"species": {"name": "C"}, "evolves_to": [{"species": {"name": "D"}, "evolves_to": []}]}
	]}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runFlatten(t *testing.T, jsonMode bool, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	out := NewOutputTo(jsonMode, &stdout, &stderr)

	root := &cobra.Command{Use: "pokeflow", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(NewEvolutionCmd(func() string { return "" }, func() *Output { return out }))
	root.SetArgs(append([]string{"evolution", "flatten"}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFlattenCmd_Table(t *testing.T) {
	path := writeFile(t, "eevee.json", eeveeChain)

	stdout, _, err := runFlatten(t, false, path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"FIRST", "SECOND", "THIRD"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"eevee", "vaporeon", "-"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"eevee", "jolteon", "-"}, strings.Fields(lines[3]))
}

func TestFlattenCmd_JSON(t *testing.T) {
	path := writeFile(t, "eevee.json", eeveeChain)

	stdout, _, err := runFlatten(t, true, path)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"first_form": "eevee", "second_form": "vaporeon", "third_form": null},
		{"first_form": "eevee", "second_form": "jolteon", "third_form": null}
	]`, stdout)
}

func TestFlattenCmd_OverflowPolicy(t *testing.T) {
	path := writeFile(t, "deep.json", deepNode)

	_, stderr, err := runFlatten(t, false, path)
	require.Error(t, err)
	assert.Contains(t, stderr, `chain "A"`)

	stdout, _, err := runFlatten(t, true, "--truncate", path)
	require.NoError(t, err)

	var records []domain.EvolutionRecord
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "A -> B -> C", records[0].String())
}

func TestFlattenCmd_MissingFile(t *testing.T) {
	_, _, err := runFlatten(t, false, filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestDecodeChains(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "chain document", input: eeveeChain, want: 1},
		{name: "bare node", input: deepNode, want: 1},
		{name: "array", input: "[" + eeveeChain + "," + deepNode + "]", want: 2},
		{name: "batch payload", input: `{"evolution": [` + eeveeChain + `]}`, want: 1},
		{name: "empty", input: "  ", wantErr: true},
		{name: "unknown object", input: `{"name": "pikachu"}`, wantErr: true},
		{name: "invalid json", input: `{"chain":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chains, err := DecodeChains([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, chains, tt.want)
		})
	}
}

func TestOutput_RecordsEmptyJSON(t *testing.T) {
	var stdout bytes.Buffer
	NewOutputTo(true, &stdout, &bytes.Buffer{}).Records(nil)
	assert.JSONEq(t, `[]`, stdout.String())
}
