package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countdown = `
    MOV R0, 03
LOOP:
    OUT R0
    DEC R0
    CMP R0, 00
    JNE LOOP
    HLT
`

func execute(t *testing.T, args ...string) (output string, err error) {
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	output = stdout.String()
	return
}

func writeFile(t *testing.T, name string, contents string) (path string) {
	path = filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return
}

func TestAsm(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "countdown.s", countdown)
	image := filepath.Join(t.TempDir(), "countdown.bin")

	output, err := execute(t, "asm", source, "-o", image)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	assert.Equal(6, len(lines))
	assert.True(strings.HasPrefix(lines[0], "00: 10 00 03"))

	contents, err := os.ReadFile(image)
	assert.NoError(err)
	assert.Equal(256, len(contents))
	assert.Equal([]byte{0x10, 0x00, 0x03, 0x50, 0x00}, contents[:5])

	output, err = execute(t, "run", "--image", image)
	assert.NoError(err)
	assert.Equal("03\n02\n01\n", output)
	runImage = false
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "countdown.s", countdown)

	output, err := execute(t, "run", source)
	assert.NoError(err)
	assert.Equal("03\n02\n01\n", output)

	// Start the count at one instead.
	patch := writeFile(t, "start.patch", "[02]: 01\n")
	output, err = execute(t, "run", source, "--patch", patch)
	assert.NoError(err)
	assert.Equal("01\n", output)
	runPatch = ""

	_, err = execute(t, "run", source, "--max-steps", "3")
	assert.Error(err)
	runMaxSteps = 0

	_, err = execute(t, "run", writeFile(t, "bad.s", "JMP NOWHERE\n"))
	assert.Error(err)
}

func TestDump(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "countdown.s", countdown)

	output, err := execute(t, "dump", source)
	assert.NoError(err)

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	assert.Equal(17, len(lines))
	assert.True(strings.HasPrefix(lines[1], "00 10 00 03 50 00"))
}
