package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/intelligence"
	"github.com/alexanderramin/mandalart/internal/llm"
	"github.com/alexanderramin/mandalart/internal/llm/llmtest"
	"github.com/alexanderramin/mandalart/internal/service"
	"github.com/alexanderramin/mandalart/internal/session"
	"github.com/alexanderramin/mandalart/internal/testutil"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

type cliFixture struct {
	app    *App
	client *llmtest.Client
	wizard service.WizardService
	served []string
}

func newCLIFixture(t *testing.T, opts ...session.Option) *cliFixture {
	t.Helper()
	stores := session.NewRegistry(session.NewSQLStorage(testutil.NewTestDB(t)), opts...)
	client := llmtest.New()
	wizard := service.NewWizardService(stores, intelligence.NewServices(client, domain.LocaleEnglish), domain.LocaleEnglish)
	f := &cliFixture{client: client, wizard: wizard}
	f.app = &App{
		Wizard:        wizard,
		Locale:        domain.LocaleEnglish,
		DefaultAddr:   ":9999",
		IsInteractive: func() bool { return false },
		Serve: func(_ context.Context, addr string) error {
			f.served = append(f.served, addr)
			return nil
		},
	}
	return f
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(f.app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stripANSI(out.String()), err
}

func (f *cliFixture) seedMandalart(t *testing.T) domain.MandalartData {
	t.Helper()
	ctx := context.Background()
	key := session.KeyFor("")
	m := testutil.NewTestMandalart("Run a marathon")
	_, err := f.wizard.Dispatch(ctx, key, session.SetGoal{Goal: m.Core})
	require.NoError(t, err)
	u, err := f.wizard.Dispatch(ctx, key, session.SetMandalart{Mandalart: m})
	require.NoError(t, err)
	require.Equal(t, session.OutcomeApplied, u.Outcome)
	return m
}

func TestStatusCmd_FreshSession(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "QUICK_CONTEXT")
	assert.Contains(t, out, "not set")
}

func TestStepCmd(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "step", "goal_input")
	require.NoError(t, err)
	assert.Contains(t, out, "Step is now")
	assert.Contains(t, out, "GOAL_INPUT")

	s, err := f.wizard.Snapshot(context.Background(), session.KeyFor(""))
	require.NoError(t, err)
	assert.Equal(t, domain.StepGoalInput, s.CurrentStep)

	_, err = f.run(t, "step", "LAUNCH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")

	_, err = f.run(t, "step")
	require.Error(t, err)
}

func TestStepCmd_StrictTransitions(t *testing.T) {
	f := newCLIFixture(t, session.WithStrictTransitions())

	_, err := f.run(t, "step", "RESULT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(session.OutcomeIllegalTransition))
}

func TestSessionFlagSelectsSlot(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "--session", "other", "step", "DISCOVERY")
	require.NoError(t, err)

	out, err := f.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "QUICK_CONTEXT")

	out, err = f.run(t, "status", "--session", "other")
	require.NoError(t, err)
	assert.Contains(t, out, "DISCOVERY")
}

func TestShowCmd(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "show")
	require.ErrorIs(t, err, errNoMandalart)

	f.seedMandalart(t)
	out, err := f.run(t, "show", "--width", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Pillar 1")
	assert.Contains(t, out, "Pillar 8")
	assert.Contains(t, out, "┼")

	_, err = f.run(t, "show", "--interactive")
	require.ErrorIs(t, err, errNotInteractive)
}

func TestExportCmd_JSON(t *testing.T) {
	f := newCLIFixture(t)
	m := f.seedMandalart(t)

	out, err := f.run(t, "export", "--format", "json")
	require.NoError(t, err)
	var got domain.MandalartData
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, m, got)
}

func TestExportCmd_MarkdownFileWithBlessing(t *testing.T) {
	f := newCLIFixture(t)
	f.seedMandalart(t)
	f.client.OnJSON(llm.TaskBlessing, map[string]string{"blessing": "Every mile counts."})

	path := filepath.Join(t.TempDir(), "plan.md")
	out, err := f.run(t, "export", "--bless", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(data)
	assert.True(t, strings.HasPrefix(md, "# Run a marathon\n\n> Every mile counts."))
	assert.Contains(t, md, "## 8. Pillar 8")
}

func TestExportCmd_Errors(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "export", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	_, err = f.run(t, "export")
	require.ErrorIs(t, err, errNoMandalart)

	f.seedMandalart(t)
	f.client.Fail(llm.TaskBlessing, llm.ErrTimeout)
	_, err = f.run(t, "export", "--bless")
	require.ErrorIs(t, err, llm.ErrTimeout)
}

func TestResetCmd(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run(t, "step", "INTERVIEW")
	require.NoError(t, err)

	_, err = f.run(t, "reset")
	require.Error(t, err, "non-interactive reset needs --yes")

	out, err := f.run(t, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Session reset.")

	s, err := f.wizard.Snapshot(context.Background(), session.KeyFor(""))
	require.NoError(t, err)
	assert.Equal(t, domain.NewSession(), s)
}

func TestHistoryCmd(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No history yet.")

	_, err = f.run(t, "step", "GOAL_INPUT")
	require.NoError(t, err)
	out, err = f.run(t, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "set_step")
	assert.Contains(t, out, "applied")
}

func TestStartCmd_NeedsTerminal(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run(t, "start")
	require.ErrorIs(t, err, errNotInteractive)
}

func TestServeCmd(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "serve")
	require.NoError(t, err)
	_, err = f.run(t, "serve", "--addr", "127.0.0.1:7000")
	require.NoError(t, err)
	assert.Equal(t, []string{":9999", "127.0.0.1:7000"}, f.served)

	f.app.Serve = nil
	_, err = f.run(t, "serve")
	require.Error(t, err)
}
