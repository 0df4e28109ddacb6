package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRenderClientUpdate_EscapesAndSplitsParagraphs(t *testing.T) {
	html, err := RenderClientUpdate("Acme <site>", "First part.\n\nSecond <b>part</b>.", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, html, "Progress update: Acme &lt;site&gt;")
	assert.Contains(t, html, "<p>First part.</p>")
	assert.Contains(t, html, "<p>Second &lt;b&gt;part&lt;/b&gt;.</p>")
	assert.Contains(t, html, "March 4, 2025")
}

func TestBuildMIME_Headers(t *testing.T) {
	msg := Message{From: "a@x.io", To: "b@y.io", Subject: "Hi", HTML: "<p>x</p>"}
	raw := string(buildMIME(msg, time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)))

	assert.Contains(t, raw, "To: b@y.io\r\n")
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.True(t, len(raw) > 0 && raw[len(raw)-len("<p>x</p>"):] == "<p>x</p>")
}

func TestMessageValidation(t *testing.T) {
	m := NewLogMailer(zaptest.NewLogger(t).Sugar())

	require.NoError(t, m.Send(context.Background(), Message{From: "a@x.io", To: "b@y.io", Subject: "ok"}))
	assert.Error(t, m.Send(context.Background(), Message{From: "a@x.io"}))
	assert.Error(t, m.Send(context.Background(), Message{From: "a@x.io", To: "b@y.io", Subject: "x\r\nBcc: evil@z.io"}))
}

func TestClientUpdateSubject(t *testing.T) {
	assert.Equal(t, "Progress update: Acme", ClientUpdateSubject("Acme"))
}
