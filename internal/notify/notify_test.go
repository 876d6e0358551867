package notify

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(zerolog.New(&buf))

	c.Success("Report downloaded successfully!")
	c.Error("Failed to load sessions")

	out := buf.String()
	assert.Contains(t, out, `"notice":"success"`)
	assert.Contains(t, out, "Report downloaded successfully!")
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "Failed to load sessions")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Equal(t, Notice{}, r.Last())

	r.Success("a")
	r.Error("b")

	assert.Equal(t, []Notice{{KindSuccess, "a"}, {KindError, "b"}}, r.Notices())
	assert.Equal(t, Notice{KindError, "b"}, r.Last())
}
