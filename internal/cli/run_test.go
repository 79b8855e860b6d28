package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/calvinalkan/school-reports/internal/cli"
)

func Test_Help_Lists_Commands(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, _, code := c.Run("--help")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	for _, name := range []string{"ls <dataset>", "export <dataset>", "browse <dataset>", "schema <dataset>", "print-config"} {
		cli.AssertContains(t, stdout, name)
	}
}

func Test_No_Command_Prints_Usage(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun()
	cli.AssertContains(t, stdout, "Usage: rpt")
}

func Test_Unknown_Command_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("frobnicate")
	cli.AssertContains(t, stderr, "unknown command: frobnicate")
}

func Test_Unknown_Global_Flag_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("--bogus", "ls")
	cli.AssertContains(t, stderr, "error:")
}

func Test_Command_Help(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("export", "--help")
	cli.AssertContains(t, stdout, "Usage: rpt export <dataset> --format <fmt> [flags]")
	cli.AssertContains(t, stdout, "--format")
	cli.AssertContains(t, stdout, "--filter")
}

func Test_Bad_Command_Flag_Keeps_Stdout_Empty(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("ls", "--nope", "grades")
	cli.AssertContains(t, stderr, "unknown flag: --nope")
	cli.AssertContains(t, stderr, "Usage: rpt ls <dataset> [flags]")
}

func Test_Invalid_Project_Config_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".rpt.json", `{"page_size": 0}`)

	stderr := c.MustFail("print-config")
	cli.AssertContains(t, stderr, "page_size")
}

func Test_Empty_Out_Dir_Flag_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("--out-dir", "", "print-config")
	cli.AssertContains(t, stderr, "output-dir cannot be empty")
}

func Test_Print_Config_Defaults(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "effective_cwd="+c.Dir)
	cli.AssertContains(t, stdout, "output_dir="+filepath.Join(c.Dir, "exports"))
	cli.AssertContains(t, stdout, "page_size=10")
	cli.AssertContains(t, stdout, "orientation=portrait")
	cli.AssertContains(t, stdout, "(defaults only)")
	cli.AssertNotContains(t, stdout, "institution_name=")
}

func Test_Print_Config_Project_File_And_Flags(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	path := c.WriteFile(".rpt.json", `{
  // project settings
  "institution_name": "Rizal High School",
  "page_size": 25,
  "orientation": "landscape",
}`)

	stdout := c.MustRun("--out-dir", "out", "print-config")
	cli.AssertContains(t, stdout, "institution_name=Rizal High School")
	cli.AssertContains(t, stdout, "page_size=25")
	cli.AssertContains(t, stdout, "orientation=landscape")
	cli.AssertContains(t, stdout, "output_dir="+filepath.Join(c.Dir, "out"))
	cli.AssertContains(t, stdout, "project_config="+path)
}

func Test_Global_Config_From_XDG(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["XDG_CONFIG_HOME"] = filepath.Join(c.Dir, "xdg")
	path := c.WriteFile(filepath.Join("xdg", "rpt", "config.json"), `{"page_size": 3}`)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "page_size=3")
	cli.AssertContains(t, stdout, "global_config="+path)
}
