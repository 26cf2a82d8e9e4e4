package contract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		top      float64
		expected string
	}{
		{name: "no top score", score: 5, top: 0, expected: LowValue},
		{name: "smallest value possible", score: 0, top: 10, expected: LowValue},
		{name: "just before moderate", score: 3.99, top: 10, expected: LowValue},
		{name: "exactly moderate", score: 4, top: 10, expected: ModerateValue},
		{name: "just before high", score: 5.99, top: 10, expected: ModerateValue},
		{name: "exactly high", score: 6, top: 10, expected: HighValue},
		{name: "just before critical", score: 7.99, top: 10, expected: HighValue},
		{name: "exactly critical", score: 8, top: 10, expected: CriticalValue},
		{name: "top entry", score: 10, top: 10, expected: CriticalValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.score, tt.top))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		label string
	}{
		{"low", 30, LowValue},
		{"moderate", 50, ModerateValue},
		{"high", 70, HighValue},
		{"critical", 90, CriticalValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, GetColorLabel(tt.score, 100), tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := SelectOutputFile(filepath.Join(t.TempDir(), "nope", "out.txt"))
		assert.Error(t, err)
	})
}

func TestGetAnalysisDBFilePath(t *testing.T) {
	assert.Contains(t, GetAnalysisDBFilePath(), ".hotspot_analysis.db")
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "src/main.go", TruncatePath("src/main.go", 40))
	assert.Equal(t, "...main.go", TruncatePath("src/pkg/main.go", 10))
	assert.Equal(t, "src/pkg/main.go", TruncatePath("src/pkg/main.go", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestDebugLog(t *testing.T) {
	var buf bytes.Buffer
	SetDebugOutput(&buf)
	t.Cleanup(func() { SetDebugOutput(&bytes.Buffer{}) })

	Debug().Debug("walk finished", "commits", 3)
	assert.Contains(t, buf.String(), "walk finished")
	assert.Contains(t, buf.String(), "commits=3")
}
