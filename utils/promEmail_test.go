package utils

import (
	"SurgiFlow/config"
	"SurgiFlow/models"
	"SurgiFlow/services"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInvitation(t *testing.T) {
	mailer := NewSMTPMailer(config.SMTPConfig{Host: "smtp.test", Port: 587, User: "apikey", From: "clinic@example.com"})
	links := []services.FormLink{
		{PromName: "OxfordKneeScore", DueDate: models.NewDate(2024, 1, 1), URL: "https://forms.test/prom?token=a&schedule=1"},
		{PromName: "OxfordKneeScore", DueDate: models.NewDate(2024, 2, 26), URL: "https://forms.test/prom?token=b&schedule=2"},
	}

	msg, err := mailer.BuildInvitation("jane@example.com", "Jane <script>", links)
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"clinic@example.com"}, msg.GetHeader("From"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "2024-02-26")
	assert.Contains(t, body, "Jane &lt;script&gt;")
}
