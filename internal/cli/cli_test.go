package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNonBlockingReader_ReadLine(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedValue string
		expectError   bool
	}{
		{name: "successful read", input: "test input\n", expectedValue: "test input"},
		{name: "read with extra whitespace", input: "  test input  \n", expectedValue: "test input"},
		{name: "empty line", input: "\n", expectedValue: ""},
		{name: "no trailing newline", input: "yes", expectedValue: "yes"},
		{name: "eof", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nbr := NewNonBlockingReader(strings.NewReader(tt.input))

			result, err := nbr.ReadLine(context.Background())
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, result)
		})
	}
}

func TestNonBlockingReader_Cancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewNonBlockingReader(pr).ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
		{input: "maybe\n", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := Confirm(context.Background(), strings.NewReader(tt.input), &out, "Delete product 3?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Delete product 3? (y/N)")
		})
	}
}

func TestInterruptHandler(t *testing.T) {
	out := &syncBuffer{}
	h := NewInterruptHandler(out, "Seeding interrupted!", "Nothing was written.")
	ctx := h.HandleInterrupts(context.Background())

	assert.False(t, h.WasInterrupted())

	h.Interrupt()
	h.Interrupt()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled")
	}

	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(out.String(), "Seeding interrupted!"))
	assert.Contains(t, out.String(), "Nothing was written.")
}

func TestNewInterruptHandler_DefaultWriter(t *testing.T) {
	h := NewInterruptHandler(nil, "stopped", "")
	assert.NotNil(t, h.writer)
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("Created product"), "Created product")
	assert.Contains(t, FormatError("boom"), ErrorIcon)
	assert.Contains(t, FormatTitle("Sales"), TallyIcon)
	assert.Contains(t, RenderBox("Summary", "Total: 10"), "Total: 10")
}

func TestNewProgressBar(t *testing.T) {
	var out syncBuffer
	bar := NewProgressBar(&out, 3, "Seeding")
	for i := 0; i < 3; i++ {
		require.NoError(t, bar.Add(1))
	}
	assert.True(t, bar.IsFinished())
}
