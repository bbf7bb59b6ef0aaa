package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterruptHandler_Interrupt(t *testing.T) {
	var buf bytes.Buffer
	h := NewInterruptHandler(&buf)
	ctx := h.HandleInterrupts(context.Background(), "Imported files are kept")

	assert.False(t, h.WasInterrupted())
	h.interrupt()
	h.interrupt()

	<-ctx.Done()
	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Interrupted, shutting down")))
	assert.Contains(t, buf.String(), "Imported files are kept")
}

func TestInterruptHandler_ParentCanceled(t *testing.T) {
	var buf bytes.Buffer
	parent, cancel := context.WithCancel(context.Background())
	h := NewInterruptHandler(&buf)
	ctx := h.HandleInterrupts(parent, "")

	cancel()
	<-ctx.Done()
	assert.False(t, h.WasInterrupted())
	assert.Empty(t, buf.String())
}
