package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spboyer/taskqa/internal/models"
	"github.com/stretchr/testify/require"
)

const meeting = "PM: 배포 일정 공유 부탁드립니다\n개발자: 네 배포 일정 공유하겠습니다"

const cleanOutput = `{"agendas":["배포"],"tasks":[{"who":"개발자","what":"배포 일정 공유","when":null}]}`

func sampleLine(t *testing.T, transcript, output string) string {
	t.Helper()
	b, err := json.Marshal(models.Sample{Messages: []models.Message{
		{Role: models.RoleSystem, Content: "회의록에서 할 일을 추출하세요"},
		{Role: models.RoleUser, Content: transcript},
		{Role: models.RoleAssistant, Content: output},
	}})
	require.NoError(t, err)
	return string(b)
}

// writeTestCorpus writes a clean sample, a schema failure, a blank line,
// and a duplicate of the first transcript.
func writeTestCorpus(t *testing.T, dir string) string {
	t.Helper()
	lines := []string{
		sampleLine(t, meeting, cleanOutput),
		sampleLine(t, "PM: 회의 끝", `{"agendas":[]}`),
		"",
		sampleLine(t, meeting, cleanOutput),
	}
	path := filepath.Join(dir, "corpus.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

// runCommand executes the root command with args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}
