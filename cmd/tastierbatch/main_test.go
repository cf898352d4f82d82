package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCase(t *testing.T, dir, name, tas, in, out string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".tas"), []byte(tas), 0o644))
	if in != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".in"), []byte(in), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".out"), []byte(out), 0o644))
}

func TestDiscoverCasesFindsTriplesSortedByName(t *testing.T) {
	dir := t.TempDir()
	writeCase(t, dir, "b_case", "Halt\n", "", "")
	writeCase(t, dir, "a_case", "Halt\n", "", "")

	cases, err := discoverCases(dir)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "a_case", cases[0].name)
	assert.Equal(t, "b_case", cases[1].name)
}

func TestRunCasesReportsPassAndMismatch(t *testing.T) {
	dir := t.TempDir()
	writeCase(t, dir, "ok", `
Const 42
Write
Print
Halt
`, "", "42\n")
	writeCase(t, dir, "wrong", `
Const 1
Write
Print
Halt
`, "", "2\n")

	cases, err := discoverCases(dir)
	require.NoError(t, err)

	results, err := runCases(context.Background(), cases, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byName := map[string]result{}
	for _, r := range results {
		byName[r.name] = r
	}
	assert.True(t, byName["ok"].ok)
	assert.False(t, byName["wrong"].ok)
	assert.Contains(t, byName["wrong"].reason, "output mismatch")
}

func TestRunCaseReadsInputFile(t *testing.T) {
	dir := t.TempDir()
	writeCase(t, dir, "echo", `
Read
Write
Print
Halt
`, "7\n", "7\n")

	cases, err := discoverCases(dir)
	require.NoError(t, err)
	require.Len(t, cases, 1)

	r := runCase(context.Background(), cases[0])
	assert.True(t, r.ok, r.reason)
}

func TestRunCaseReportsAssembleError(t *testing.T) {
	dir := t.TempDir()
	writeCase(t, dir, "bad", "Frobnicate 1\n", "", "")

	cases, err := discoverCases(dir)
	require.NoError(t, err)
	require.Len(t, cases, 1)

	r := runCase(context.Background(), cases[0])
	assert.False(t, r.ok)
	assert.Contains(t, r.reason, "assemble")
}
