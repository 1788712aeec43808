package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageRendersTemplate(t *testing.T) {
	t.Parallel()

	n, err := NewSMTPNotifier(SMTPConfig{
		Host:         "smtp.example.com",
		Port:         587,
		From:         "no-reply@example.com",
		CodeValidity: 10 * time.Minute,
	})
	require.NoError(t, err)

	msg, err := n.message("alice@x.com", "042137")
	require.NoError(t, err)

	s := string(msg)
	require.Contains(t, s, "To: alice@x.com")
	require.Contains(t, s, "Subject: Your verification code")
	require.Contains(t, s, "042137")
	require.Contains(t, s, "valid for 10 minutes")
}

func TestCustomTemplateAndSubject(t *testing.T) {
	t.Parallel()

	n, err := NewSMTPNotifier(SMTPConfig{
		Subject:      "Warden code",
		BodyTemplate: "code={{.Code}}",
	})
	require.NoError(t, err)

	msg, err := n.message("bob@x.com", "999999")
	require.NoError(t, err)
	require.Contains(t, string(msg), "Subject: Warden code")
	require.Contains(t, string(msg), "code=999999")
}

func TestBadTemplateRejectedAtConstruction(t *testing.T) {
	t.Parallel()

	_, err := NewSMTPNotifier(SMTPConfig{BodyTemplate: "{{.Code"})
	require.Error(t, err)
}
