package root

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", dbPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCompleteActivityPersistsAcrossRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ll.db")

	out, err := run(t, db, "do", "fitness-daily-movement")
	require.NoError(t, err)
	require.Contains(t, out, "Completed")
	require.Contains(t, out, "First Steps")

	out, err = run(t, db, "history")
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(out, "+"))

	out, err = run(t, db, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Overall level")
}

func TestDoRejectsMissingReflection(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ll.db")

	_, err := run(t, db, "do", "daily-mindful-moment")
	require.Error(t, err)
	require.Contains(t, err.Error(), "reflection")

	out, err := run(t, db, "do", "daily-mindful-moment", "--reflection", "noticed my breath")
	require.NoError(t, err)
	require.Contains(t, out, "Completed")
}

func TestQuestAcceptAndAbandon(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ll.db")

	out, err := run(t, db, "quests", "accept", "fitness-first")
	require.NoError(t, err)
	require.Contains(t, out, "Accepted")

	out, err = run(t, db, "quests", "--status", "active")
	require.NoError(t, err)
	require.Contains(t, out, "fitness-first")

	_, err = run(t, db, "quests", "accept", "fitness-first")
	require.Error(t, err)

	_, err = run(t, db, "quests", "abandon", "fitness-first")
	require.NoError(t, err)
}

func TestPlanAddListRemove(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ll.db")

	out, err := run(t, db, "plan", "add", "fitness-daily-movement", "--date", "2030-01-02", "--recurring", "--at", "07:15")
	require.NoError(t, err)
	require.Contains(t, out, "Planned")

	out, err = run(t, db, "plan")
	require.NoError(t, err)
	require.Contains(t, out, "07:15")

	_, err = run(t, db, "plan", "add", "fitness-daily-movement", "--date", "02/01/2030")
	require.Error(t, err)
}

func TestEnneagramValidation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ll.db")

	_, err := run(t, db, "profile", "enneagram", "10")
	require.Error(t, err)

	out, err := run(t, db, "profile", "enneagram", "type 4")
	require.NoError(t, err)
	require.Contains(t, out, "Enneagram set")
}
