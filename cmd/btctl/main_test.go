package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--width", "60"))
	err := cmd.Execute()
	return out.String(), err
}

func TestWeeklyCommand(t *testing.T) {
	path := writeFile(t, "week.csv", `Student,Week_Date,Q1,Q2,Q3,Q4,Q5,Q6,Q7,Q8,Q9,Q10
S1,2024-03-04,1,1,1,0,1,0,1,1,0,1
`)

	out, err := run(t, "weekly", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Overall_Accuracy(%)")
	assert.Contains(t, out, "Overall accuracy (%)")
	assert.Contains(t, out, "70.00")
}

func TestWeeklyCommandMissingColumn(t *testing.T) {
	path := writeFile(t, "week.csv", "Student,Week_Date,Q1\nS1,2024-03-04,1\n")

	_, err := run(t, "weekly", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Q10")
}

func TestMonthlyCommandTrend(t *testing.T) {
	var b strings.Builder
	b.WriteString("Student,Month")
	for w := 1; w <= 4; w++ {
		for q := 1; q <= 10; q++ {
			fmt.Fprintf(&b, ",W%d_Q%d", w, q)
		}
	}
	b.WriteString("\nAsha,March")
	b.WriteString(strings.Repeat(",1,1,1,1,1,1,0,0,0,0", 4))
	b.WriteString("\n")
	path := writeFile(t, "march.csv", b.String())

	out, err := run(t, "monthly", path, "--student", "Asha", "--predict")
	require.NoError(t, err)
	assert.Contains(t, out, "Monthly_Avg_Accuracy")
	assert.Contains(t, out, "Weekly trend (%)")
	assert.Contains(t, out, "Note: Monthly_Label column not found for training.")
}

func TestPaperCommandWritesExport(t *testing.T) {
	path := writeFile(t, "paper.csv", `Question Text,Marks
Define a stack,2
Explain recursion,4
Design a cache for a web service,10
`)
	outPath := filepath.Join(t.TempDir(), "tagged.csv")

	out, err := run(t, "paper", path, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Total BT score: 30")
	assert.Contains(t, out, "Difficulty:")
	assert.Contains(t, out, "Low")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Question Text,Marks,BT_Level,BT_Score")
}

func TestRunsCommandReadsHistory(t *testing.T) {
	paper := writeFile(t, "paper.csv", "Question Text\nDefine a stack\n")
	history := filepath.Join(t.TempDir(), "runs.db")

	_, err := run(t, "paper", paper, "--history", history)
	require.NoError(t, err)

	out, err := run(t, "runs", "--history", history, "--kind", "paper")
	require.NoError(t, err)
	assert.Contains(t, out, "paper.csv")
	assert.Contains(t, out, "1 of 1 runs")

	_, err = run(t, "runs")
	assert.Error(t, err)
}
