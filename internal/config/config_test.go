package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/school-reports/internal/config"
	"github.com/calvinalkan/school-reports/internal/export"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func ptr[T any](v T) *T { return &v }

func Test_Load_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.EffectiveCwd)
	assert.Equal(t, filepath.Join(dir, "exports"), cfg.OutputDirAbs)
	assert.Equal(t, dir, cfg.DatasetDirAbs)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, export.Portrait, cfg.PageOrientation())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, config.Sources{}, cfg.Sources)
}

func Test_Load_Precedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()

	writeFile(t, filepath.Join(xdg, "rpt", "config.json"), `{
		// global
		"institution_name": "Global Academy",
		"output_dir": "global-out",
		"page_size": 25,
		"orientation": "landscape",
	}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{"output_dir": "project-out", "log_level": "info"}`)

	env := map[string]string{"XDG_CONFIG_HOME": xdg}

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: env})
	require.NoError(t, err)

	assert.Equal(t, "Global Academy", cfg.InstitutionName)
	assert.Equal(t, filepath.Join(dir, "project-out"), cfg.OutputDirAbs, "project beats global")
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, export.Landscape, cfg.PageOrientation())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(xdg, "rpt", "config.json"), cfg.Sources.Global)
	assert.Equal(t, filepath.Join(dir, config.FileName), cfg.Sources.Project)

	cfg, err = config.Load(config.LoadInput{
		WorkDirOverride: dir,
		Env:             env,
		Overrides: config.Overrides{
			OutputDir: ptr("/abs/out"),
			PageSize:  ptr(5),
			LogLevel:  ptr("debug"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/abs/out", cfg.OutputDirAbs, "CLI beats files")
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func Test_Load_Explicit_Config_Replaces_Project_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"output_dir": "project-out"}`)
	writeFile(t, filepath.Join(dir, "custom.json"), `{"dataset_dir": "data"}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, ConfigPath: "custom.json"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "exports"), cfg.OutputDirAbs)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DatasetDirAbs)
	assert.Equal(t, filepath.Join(dir, "custom.json"), cfg.Sources.Project)
}

func Test_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		project   string
		input     config.LoadInput
		wantErr   error
		wantOuter error
	}{
		{
			name:    "missing explicit config",
			input:   config.LoadInput{ConfigPath: "nope.json"},
			wantErr: config.ErrConfigFileNotFound,
		},
		{
			name:      "invalid json",
			project:   `{invalid json}`,
			wantErr:   config.ErrConfigInvalid,
			wantOuter: config.ErrConfigInvalid,
		},
		{
			name:      "explicit empty output dir",
			project:   `{"output_dir": ""}`,
			wantErr:   config.ErrOutputDirEmpty,
			wantOuter: config.ErrConfigInvalid,
		},
		{
			name:      "zero page size",
			project:   `{"page_size": 0}`,
			wantErr:   config.ErrInvalidPageSize,
			wantOuter: config.ErrConfigInvalid,
		},
		{
			name:    "bad orientation",
			project: `{"orientation": "sideways"}`,
			wantErr: config.ErrInvalidOrientation,
		},
		{
			name:    "bad log level",
			project: `{"log_level": "loud"}`,
			wantErr: config.ErrInvalidLogLevel,
		},
		{
			name:    "empty output dir override",
			input:   config.LoadInput{Overrides: config.Overrides{OutputDir: ptr("")}},
			wantErr: config.ErrOutputDirEmpty,
		},
		{
			name:    "negative page size override",
			input:   config.LoadInput{Overrides: config.Overrides{PageSize: ptr(-1)}},
			wantErr: config.ErrInvalidPageSize,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tt.project != "" {
				writeFile(t, filepath.Join(dir, config.FileName), tt.project)
			}

			input := tt.input
			input.WorkDirOverride = dir

			_, err := config.Load(input)
			require.ErrorIs(t, err, tt.wantErr)

			if tt.wantOuter != nil {
				require.ErrorIs(t, err, tt.wantOuter)
			}
		})
	}
}

func Test_Format(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"institution_name": "Rizal High"}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir})
	require.NoError(t, err)

	out := cfg.Format()
	assert.Contains(t, out, "output_dir="+filepath.Join(dir, "exports"))
	assert.Contains(t, out, "page_size=10")
	assert.Contains(t, out, "institution_name=Rizal High")
	assert.NotContains(t, out, "institution_address=")

	inst := cfg.Institution()
	assert.Equal(t, "Rizal High", inst.Name)
}
