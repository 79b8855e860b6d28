package cli_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calvinalkan/school-reports/internal/cli"
)

func Test_Browse_Paging_Script(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("roster", rosterDataset(25))

	stdout, stderr, code := c.RunWithInput("next\nnext\nnext\nprev\npage 1\nprev\nquit\n", "browse", "roster")
	assert.Equal(t, 0, code, stderr)

	cli.AssertContains(t, stdout, "Class Roster")
	cli.AssertContains(t, stdout, "Showing 1 to 10 of 25 | sort: id asc")
	cli.AssertContains(t, stdout, "Showing 11 to 20 of 25")
	cli.AssertContains(t, stdout, "Showing 21 to 25 of 25")
	cli.AssertContains(t, stdout, "Pages: 1 2 [3]")
	cli.AssertContains(t, stderr, "error: already on the last page")
	cli.AssertContains(t, stderr, "error: already on the first page")
}

func Test_Browse_Sort_Toggle_Keeps_Page(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("roster", rosterDataset(25))

	stdout, stderr, code := c.RunWithInput("page 3\nsort id\nsort id\n", "browse", "roster")
	assert.Equal(t, 0, code, stderr)

	cli.AssertContains(t, stdout, "Showing 21 to 25 of 25 | sort: id desc")
	cli.AssertContains(t, stdout, "Showing 21 to 25 of 25 | sort: id asc")

	for _, block := range strings.Split(stdout, "Pages:") {
		if strings.Contains(block, "sort: id desc") {
			assert.Contains(t, block, "R-05")
			assert.NotContains(t, block, "R-21")
		}
	}
}

func Test_Browse_Search_And_Filter_Reset_Page(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)

	script := strings.Join([]string{
		"search reyes",
		"search",
		"filter section=bonifacio",
		"filter section=rizal",
		"unfilter section",
		"filter section=mabini",
		"filter score=82.5",
		"clear",
		"q",
	}, "\n")

	stdout, stderr, code := c.RunWithInput(script, "browse", "grades")
	assert.Equal(t, 0, code, stderr)

	cli.AssertContains(t, stdout, `Showing 1 to 1 of 1 | sort: id asc | search: "reyes"`)
	cli.AssertContains(t, stdout, "| section=bonifacio\n")
	cli.AssertContains(t, stdout, "Showing 1 to 3 of 3 | sort: id asc | section=bonifacio|rizal")
	cli.AssertContains(t, stdout, "Showing 1 to 1 of 1 | sort: id asc | score=82.5")
	cli.AssertContains(t, stderr, `has no option "mabini"`)
}

func Test_Browse_Export_Uses_Current_Query(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("roster", rosterDataset(25))

	stdout, stderr, code := c.RunWithInput("search Student 1\nexport csv ones\nexit\n", "browse", "roster")
	assert.Equal(t, 0, code, stderr)

	cli.AssertContains(t, stdout, "exported "+filepath.Join(c.Dir, "exports", "ones.csv"))

	content := c.ReadFile(filepath.Join("exports", "ones.csv"))
	cli.AssertContains(t, content, "Total Records,10\n")
	cli.AssertContains(t, content, "R-19,Student 19,")
	cli.AssertNotContains(t, content, "Student 20")
}

func Test_Browse_Reports_Bad_Input_And_Continues(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)

	script := "dance\npage x\npage 9\nsort house\nexport\nexport docx\nhelp\n"

	stdout, stderr, code := c.RunWithInput(script, "browse", "grades")
	assert.Equal(t, 0, code)

	cli.AssertContains(t, stderr, "error: unknown command: dance")
	cli.AssertContains(t, stderr, "error: usage: page <number>")
	cli.AssertContains(t, stderr, "error: page out of range: 9 (1 to 1)")
	cli.AssertContains(t, stderr, "error: unknown field: sort field house")
	cli.AssertContains(t, stderr, "error: usage: export <pdf|excel|csv> [name]")
	cli.AssertContains(t, stderr, "error: unknown export format")
	cli.AssertContains(t, stdout, "Fields: id, name, section, score")
}

func Test_Browse_Without_Input_Shows_First_Page(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)

	stdout := c.MustRun("browse", "grades", "--page-size", "2")
	cli.AssertContains(t, stdout, "Showing 1 to 2 of 3")
	cli.AssertContains(t, stdout, "Pages: [1] 2")
}
