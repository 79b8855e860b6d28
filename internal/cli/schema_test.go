package cli_test

import (
	"testing"

	"github.com/calvinalkan/school-reports/internal/cli"
)

func Test_Schema_Describes_Dataset(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)

	stdout := c.MustRun("schema", "grades")
	cli.AssertContains(t, stdout, "name=grades")
	cli.AssertContains(t, stdout, "records=3")
	cli.AssertContains(t, stdout, "searchable=id,name")
	cli.AssertContains(t, stdout, "default_sort=id asc")
	cli.AssertContains(t, stdout, "section  section     enum    rizal,bonifacio")
	cli.AssertContains(t, stdout, "Score       score    number")
}

func Test_Schema_Requires_Dataset(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("schema")
	cli.AssertContains(t, stderr, "expected exactly one dataset argument")
}
