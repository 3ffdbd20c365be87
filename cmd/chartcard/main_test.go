package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/chartcard/internal/chart"
	"github.com/verte-zerg/chartcard/internal/config"
	"github.com/verte-zerg/chartcard/internal/model"
	"github.com/verte-zerg/chartcard/internal/usage"
)

func testCardConfig() model.CardConfig {
	cfg := model.DefaultCardConfig()
	cfg.OrgID = usage.SampleOrgID
	return cfg
}

func TestValidateRenderOptions(t *testing.T) {
	cases := []struct {
		name   string
		opts   renderOptions
		watch  bool
		output string
		ok     bool
	}{
		{name: "svg", opts: renderOptions{format: "svg"}, ok: true},
		{name: "text watch", opts: renderOptions{format: "text"}, watch: true, ok: true},
		{name: "png", opts: renderOptions{format: "png"}},
		{name: "negative width", opts: renderOptions{format: "text", width: -1}},
		{name: "svg watch", opts: renderOptions{format: "svg"}, watch: true},
		{name: "watch to file", opts: renderOptions{format: "text"}, watch: true, output: "card.txt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRenderOptions(tc.opts, tc.watch, tc.output)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRenderCardSVG(t *testing.T) {
	var buf bytes.Buffer
	metrics := usage.SampleMetrics("demo")
	err := renderCard(&buf, metrics, testCardConfig(), chart.KindLine, renderOptions{format: "svg", width: 348, hover: 1})
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "<polyline")
	assert.Contains(t, out, "Tue: 1,400")
	assert.Contains(t, out, `width="348"`)
}

func TestRenderCardSVGFallsBackWithoutWidth(t *testing.T) {
	var buf bytes.Buffer
	metrics := usage.SampleMetrics("demo")
	err := renderCard(&buf, metrics, testCardConfig(), chart.KindBar, renderOptions{format: "svg", hover: -1})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `width="348"`)
	assert.Equal(t, 7, strings.Count(buf.String(), `fill-opacity="0.8"`))
}

func TestRenderCardText(t *testing.T) {
	var buf bytes.Buffer
	metrics := usage.SampleMetrics("demo")
	err := renderCard(&buf, metrics, testCardConfig(), chart.KindLine, renderOptions{format: "text", width: 80, hover: 4})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "[Day]")
	assert.Contains(t, out, "Mon")
	assert.Contains(t, out, "Fri: 1,900")
	assert.NotContains(t, out, "\x1b[")
}

func TestCardConfigFromFlags(t *testing.T) {
	newRootCmd()
	cfg, kind, err := cardConfigFromFlags()
	require.NoError(t, err)
	assert.Equal(t, chart.KindLine, kind)
	assert.Equal(t, model.PeriodDay, cfg.Period)
	assert.Equal(t, model.DefaultChartHeight, cfg.ChartHeight)
	assert.Equal(t, usage.SampleOrgID, cfg.OrgID)

	cardType = "pie"
	_, _, err = cardConfigFromFlags()
	assert.ErrorContains(t, err, "invalid --type")

	newRootCmd()
	cardHeight = 10
	_, _, err = cardConfigFromFlags()
	assert.ErrorContains(t, err, "--chart-height")

	newRootCmd()
	cardPeriod = "year"
	_, _, err = cardConfigFromFlags()
	assert.ErrorContains(t, err, "invalid --period")
}

func TestConfigTemplateMatchesFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chartcard", "config.toml")
	require.NoError(t, writeConfigTemplate(path))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Card.Title)

	var enabled []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, "=") {
			line = strings.TrimPrefix(line, "# ")
		}
		enabled = append(enabled, line)
	}
	full := filepath.Join(dir, "full.toml")
	require.NoError(t, os.WriteFile(full, []byte(strings.Join(enabled, "\n")), 0o644))

	cfg, err = config.LoadConfig(full)
	require.NoError(t, err)
	require.NotNil(t, cfg.Card.Title)
	assert.Equal(t, defaultTitle, *cfg.Card.Title)
	assert.Equal(t, model.DefaultChartHeight, *cfg.Card.ChartHeight)
	assert.Equal(t, usage.SampleOrgID, *cfg.Data.Org)
	assert.Equal(t, defaultLogLevel, *cfg.Log.Level)
}

func TestWriteConfigTemplateKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[card]\n"), 0o644))
	require.NoError(t, writeConfigTemplate(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[card]\n", string(data))
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestSeedImportMetricsFlow(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	db := filepath.Join(t.TempDir(), "chartcard.db")

	runCLI(t, "seed", "--org", "acme", "--seed", "3", "--db", db)

	out := runCLI(t, "metrics", "--org", "acme", "--db", db, "--sample=false")
	assert.Contains(t, out, "Org: Org acme (acme)")
	assert.Contains(t, out, "Month")

	data := filepath.Join(t.TempDir(), "day.csv")
	require.NoError(t, os.WriteFile(data, []byte("# custom\nA,10\nB,20\nC,5\n"), 0o644))
	runCLI(t, "import", data, "--org", "acme", "--period", "day", "--db", db)

	out = runCLI(t, "render", "--format", "svg", "--org", "acme", "--db", db, "--sample=false", "--hover", "1")
	assert.Contains(t, out, "B: 20")

	out = runCLI(t, "orgs", "--db", db)
	assert.Contains(t, out, "acme\tOrg acme\t")
}

func TestMetricsUsesSampleFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	db := filepath.Join(t.TempDir(), "chartcard.db")

	out := runCLI(t, "metrics", "--org", "fresh", "--db", db)
	assert.Contains(t, out, "Requests: 469,600")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"metrics", "--org", "fresh", "--db", db, "--sample=false"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUsageNotFound)
}

func TestSampleOnlyRunDoesNotCreateStore(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	out := runCLI(t, "metrics")
	assert.Contains(t, out, "Requests: 469,600")
	out = runCLI(t, "render", "--format", "svg")
	assert.Contains(t, out, "<polyline")

	_, err := os.Stat(config.DefaultDBPath())
	assert.True(t, os.IsNotExist(err), "store file created: %v", err)

	runCLI(t, "seed", "--org", usage.SampleOrgID, "--seed", "5")
	_, err = os.Stat(config.DefaultDBPath())
	require.NoError(t, err)
	out = runCLI(t, "metrics")
	assert.Contains(t, out, "Org: Org demo (demo)")
}

func TestConfigFileFeedsFlags(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := config.DefaultConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[card]\ntitle = \"From File\"\nperiod = \"week\"\n"), 0o644))
	db := filepath.Join(t.TempDir(), "chartcard.db")

	out := runCLI(t, "render", "--format", "svg", "--db", db)
	assert.Contains(t, out, "From File")
	assert.Contains(t, out, "W1")

	out = runCLI(t, "render", "--format", "svg", "--db", db, "--title", "From Flag")
	assert.Contains(t, out, "From Flag")
	assert.NotContains(t, out, "From File")
}
