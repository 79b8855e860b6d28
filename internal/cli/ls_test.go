package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/school-reports/internal/cli"
)

func Test_Ls_Default_Page(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)

	stdout := c.MustRun("ls", "grades")

	lines := strings.Split(stdout, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "Student ID  Name           section    Score", lines[0])
	assert.Equal(t, "S-1         Santos, Maria  Rizal      90", lines[2])
	assert.Equal(t, "S-2         Juan Cruz      Bonifacio  82.5", lines[3])
	cli.AssertContains(t, stdout, "Showing 1 to 3 of 3")
	cli.AssertContains(t, stdout, "Pages: [1]")
}

func Test_Ls_Search_Filter_Sort(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "search is case-insensitive",
			args:    []string{"--search", "REYES"},
			want:    []string{"Ana Reyes", "Showing 1 to 1 of 1"},
			notWant: []string{"Juan Cruz"},
		},
		{
			name:    "filter on enum",
			args:    []string{"--filter", "section=bonifacio"},
			want:    []string{"Juan Cruz", "Showing 1 to 1 of 1"},
			notWant: []string{"Ana Reyes"},
		},
		{
			name: "values of one field are or-ed",
			args: []string{"-f", "section=bonifacio", "-f", "section=rizal"},
			want: []string{"Showing 1 to 3 of 3"},
		},
		{
			name: "no match",
			args: []string{"--search", "nobody"},
			want: []string{"Showing 0 to 0 of 0", "Pages: [1]"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout := c.MustRun(append([]string{"ls", "grades"}, tt.args...)...)
			for _, w := range tt.want {
				cli.AssertContains(t, stdout, w)
			}

			for _, w := range tt.notWant {
				cli.AssertNotContains(t, stdout, w)
			}
		})
	}
}

func Test_Ls_Sort_Descending_By_Score(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)

	stdout := c.MustRun("ls", "grades", "--sort", "score", "--desc")

	first := strings.Index(stdout, "S-1")
	second := strings.Index(stdout, "S-2")
	third := strings.Index(stdout, "S-3")
	assert.Less(t, first, second)
	assert.Less(t, second, third)

	stdout = c.MustRun("ls", "grades", "--sort", "score")
	assert.Less(t, strings.Index(stdout, "S-3"), strings.Index(stdout, "S-2"))
}

func Test_Ls_Paging(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("roster", rosterDataset(45))

	stdout := c.MustRun("ls", "roster", "--page", "3")
	cli.AssertContains(t, stdout, "Student 21")
	cli.AssertContains(t, stdout, "Student 30")
	cli.AssertNotContains(t, stdout, "Student 31")
	cli.AssertContains(t, stdout, "Showing 21 to 30 of 45")
	cli.AssertContains(t, stdout, "Pages: 1 2 [3] 4 5")

	stdout = c.MustRun("ls", "roster", "--page", "5", "--page-size", "4")
	cli.AssertContains(t, stdout, "Showing 17 to 20 of 45")
	cli.AssertContains(t, stdout, "Pages: 3 4 [5] 6 7")

	stdout = c.MustRun("ls", "roster", "--page", "5")
	cli.AssertContains(t, stdout, "Showing 41 to 45 of 45")
	cli.AssertContains(t, stdout, "Pages: 1 2 3 4 [5]")
}

func Test_Ls_Page_Size_From_Config(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".rpt.json", `{"page_size": 20}`)
	c.WriteDataset("roster", rosterDataset(45))

	stdout := c.MustRun("ls", "roster")
	cli.AssertContains(t, stdout, "Showing 1 to 20 of 45")
}

func Test_Ls_Page_Past_End_Warns(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)

	stdout, stderr, code := c.Run("ls", "grades", "--page", "4")
	assert.Equal(t, 1, code)
	cli.AssertContains(t, stdout, "Showing 0 to 0 of 3")
	cli.AssertContains(t, stderr, "warning: page 4 is past the last page (1)")
}

func Test_Ls_Huge_Page_Warns_Instead_Of_Crashing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)

	for _, page := range []string{"922337203685477581", "922337203685477582", "9223372036854775807"} {
		stdout, stderr, code := c.Run("ls", "grades", "--page", page, "--page-size", "10")
		assert.Equal(t, 1, code, page)
		cli.AssertContains(t, stdout, "Showing 0 to 0 of 3")
		cli.AssertContains(t, stderr, "warning: page "+page+" is past the last page (1)")
	}
}

func Test_Ls_Dataset_By_Path_And_Dataset_Dir(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("data/grades.jsonc", gradesDataset)

	stdout := c.MustRun("ls", "data/grades.jsonc")
	cli.AssertContains(t, stdout, "Santos, Maria")

	c.WriteFile(".rpt.json", `{"dataset_dir": "data"}`)

	stdout = c.MustRun("ls", "grades")
	cli.AssertContains(t, stdout, "Santos, Maria")
}

func Test_Ls_Errors(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDataset("grades", gradesDataset)
	c.WriteDataset("broken", `{"name": "broken", "title": "", "fields": []}`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing dataset argument", []string{"ls"}, "expected exactly one dataset argument"},
		{"unknown dataset", []string{"ls", "nope"}, "dataset not found: nope"},
		{"invalid dataset file", []string{"ls", "broken"}, "invalid dataset"},
		{"unknown filter field", []string{"ls", "grades", "--filter", "house=red"}, "unknown field"},
		{"filter without equals", []string{"ls", "grades", "--filter", "section"}, "want field=value"},
		{"enum option not declared", []string{"ls", "grades", "--filter", "section=mabini"}, "no option"},
		{"bad number filter", []string{"ls", "grades", "--filter", "score=high"}, "filter score"},
		{"unknown sort field", []string{"ls", "grades", "--sort", "house"}, "unknown field"},
		{"page zero", []string{"ls", "grades", "--page", "0"}, "--page must be at least 1"},
		{"page size zero", []string{"ls", "grades", "--page-size", "0"}, "page size must be positive"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stderr := c.MustFail(tt.args...)
			cli.AssertContains(t, stderr, tt.want)
		})
	}
}
