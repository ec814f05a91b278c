package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sqliteConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yaml := "database:\n  driver: sqlite\n  sqlite_path: " + filepath.Join(dir, "bookings.db") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	return dir
}

func TestExplain_PrintsEveryQuery(t *testing.T) {
	out, err := execute(t, "explain", "events", "--config", t.TempDir(), "--tenant", "7", "-q", "event[]=3")
	require.NoError(t, err)

	for _, name := range []string{"summary", "breakdown_ticket_category", "components", "count", "detail"} {
		assert.Contains(t, out, "-- "+name+"\n")
	}
	assert.Contains(t, out, "ev.owner_id = @tenant")
	assert.Contains(t, out, "@tenant = 7")
}

func TestExplain_RequiresTenant(t *testing.T) {
	_, err := execute(t, "explain", "events", "--config", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant")
}

func TestRootCmd_RejectsOutputFormat(t *testing.T) {
	_, err := execute(t, "explain", "events", "--tenant", "1", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestMigrateThenRun_SQLite(t *testing.T) {
	dir := sqliteConfigDir(t)

	out, err := execute(t, "migrate", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema up to date")

	out, err = execute(t, "run", "venues", "--config", dir, "--tenant", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "venues report")
	assert.Contains(t, out, "Bookings 0 of 0")
}

func TestExport_CSV(t *testing.T) {
	dir := sqliteConfigDir(t)
	target := filepath.Join(dir, "out.csv")

	out, err := execute(t, "export", "events", "--config", dir, "--tenant", "1", "-f", "csv", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 0 bookings")

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "booking_reference", records[0][0])
}

func TestExport_RejectsFormat(t *testing.T) {
	_, err := execute(t, "export", "events", "--tenant", "1", "-f", "pdf")
	require.Error(t, err)
}
