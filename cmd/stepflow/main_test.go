package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flowHCL = `
step "start" {
  type = "start"
  name = "Début"
}

step "mail" {
  type        = "email"
  name        = "Relance"
  description = "Votre panier vous attend"
  conditional = true
}

step "won" {
  type = "end"
  name = "Gagné"
}

step "lost" {
  type = "end"
  name = "Perdu"
}

edge {
  from = "start"
  to   = "mail"
}

edge {
  from   = "mail"
  to     = "won"
  handle = "success"
}

edge {
  from   = "mail"
  to     = "lost"
  handle = "failure"
}
`

const fastConfig = `
log:
  level: error
simulation:
  step_pause: 1ms
  min_delay: 1ms
  max_delay: 2ms
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	err := run(context.Background(), out, errOut, args)
	return out.String(), err
}

func TestValidate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepflow.yaml", fastConfig)
	flow := writeFile(t, dir, "flow.hcl", flowHCL)

	out, err := execute(t, "--config", cfg, "validate", flow)
	require.NoError(t, err)
	assert.Contains(t, out, "✅")
	assert.Contains(t, out, "4 steps, 3 edges")
	assert.NotContains(t, out, "⚠️")
}

func TestValidateInvalid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepflow.yaml", fastConfig)
	flow := writeFile(t, dir, "flow.json", `{"nodes":[{"id":"s","data":{"name":"S","stepType":"start"}}],"edges":[]}`)

	out, err := execute(t, "--config", cfg, "validate", flow)
	require.ErrorIs(t, err, errInvalidWorkflow)
	assert.Contains(t, out, "Le workflow doit contenir au moins un nœud de fin")
}

func TestValidateWarnsAboutCyclesAndUnreachableSteps(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepflow.yaml", fastConfig)
	flow := writeFile(t, dir, "flow.hcl", `
step "s" {
  type = "start"
}
step "a" {
  type = "sms"
}
step "b" {
  type = "sms"
}
step "f" {
  type = "end"
  name = "Fin"
}
edge {
  from = "s"
  to   = "a"
}
edge {
  from = "a"
  to   = "b"
}
edge {
  from = "b"
  to   = "a"
}
`)

	out, err := execute(t, "--config", cfg, "validate", flow)
	require.NoError(t, err)
	assert.Contains(t, out, "cycle a -> b -> a")
	assert.Contains(t, out, "Fin (f) is not reachable")
}

func TestShow(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepflow.yaml", fastConfig)
	flow := writeFile(t, dir, "flow.hcl", flowHCL)

	out, err := execute(t, "--config", cfg, "show", flow)
	require.NoError(t, err)
	assert.Contains(t, out, "Entry Point: start")
	assert.Contains(t, out, "mail --[success]--> won")
	assert.Contains(t, out, "[conditional]")
}

func TestRunSimulation(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepflow.yaml", fastConfig)
	flow := writeFile(t, dir, "flow.hcl", flowHCL)

	out, err := execute(t, "--config", cfg, "run", flow, "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Début")
	assert.Contains(t, out, "⏳ En cours...")
	assert.Contains(t, out, "Email « Relance » : Votre panier vous attend")
	assert.Contains(t, out, "completed: 3 completed, 1 pending")
}

func TestRunRejectsInvalidWorkflow(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepflow.yaml", fastConfig)
	flow := writeFile(t, dir, "flow.hcl", "step \"s\" {\n  type = \"start\"\n}\n")

	out, err := execute(t, "--config", cfg, "run", flow)
	require.Error(t, err)
	assert.Contains(t, out, "Le workflow doit contenir au moins un nœud de fin")
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepflow.yaml", fastConfig)
	flow := writeFile(t, dir, "flow.hcl", flowHCL)
	storeDir := filepath.Join(dir, "store")

	out, err := execute(t, "--config", cfg, "--store-dir", storeDir, "save", flow)
	require.NoError(t, err)
	assert.Contains(t, out, "saved 4 steps and 3 edges")

	exported := filepath.Join(dir, "exported.json")
	out, err = execute(t, "--config", cfg, "--store-dir", storeDir, "load", "--out", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "last saved")

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stepType": "email"`)

	out, err = execute(t, "--config", cfg, "--store-dir", storeDir, "load")
	require.NoError(t, err)
	assert.Contains(t, out, "Entry Point: start")
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()
	_, err := execute(t, "frobnicate")
	require.Error(t, err)
}
