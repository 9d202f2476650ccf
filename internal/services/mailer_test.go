package services

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailerEncodesHeaders(t *testing.T) {
	mailer := SMTPMailer{Host: "localhost", Port: 25, From: "no-reply@sanjeevni.app"}

	msg, err := mailer.message(Email{
		To:      "asha@example.com",
		Subject: "Réinitialiser le mot de passe",
		Body:    "Open the link to continue.",
	})
	require.NoError(t, err)

	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	require.NoError(t, err)

	assert.Contains(t, raw.String(), "asha@example.com")
	assert.Contains(t, raw.String(), "no-reply@sanjeevni.app")
	assert.Contains(t, raw.String(), "=?UTF-8?")
	assert.NotContains(t, raw.String(), "Réinitialiser")
}

func TestSMTPMailerRejectsBadRecipient(t *testing.T) {
	mailer := SMTPMailer{Host: "localhost", Port: 25, From: "no-reply@sanjeevni.app"}

	err := mailer.Send(context.Background(), Email{To: "not an address", Subject: "x"})
	assert.ErrorContains(t, err, "invalid recipient")
}

func TestSMTPMailerReportsUnreachableServer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().(*net.TCPAddr)
	require.NoError(t, listener.Close())

	mailer := SMTPMailer{
		Host:    "127.0.0.1",
		Port:    addr.Port,
		From:    "no-reply@sanjeevni.app",
		Timeout: time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = mailer.Send(ctx, Email{To: "asha@example.com", Subject: "Reset", Body: "link"})
	assert.ErrorContains(t, err, "failed to send email to asha@example.com")
}
