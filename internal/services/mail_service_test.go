package services

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fitbook/pkg/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testMailConfig() config.MailConfig {
	return config.MailConfig{
		APIKey:   "key",
		Host:     "smtp.test",
		Port:     587,
		Username: "apikey",
		From:     "no-reply@fitbook.test",
		FromName: "FitBook",
	}
}

func TestSMTPNotifier_RenderAndCompose(t *testing.T) {
	n := NewSMTPNotifier(testMailConfig(), "FitBook")

	html, text, err := n.render(mailView{
		Subject:  "Booking confirmed",
		Body:     "See you <Monday>",
		LinkURL:  "https://fitbook.test/bookings",
		LinkText: "View my bookings",
		Brand:    "FitBook",
		Year:     2030,
	})
	require.NoError(t, err)
	require.Contains(t, html, "Booking confirmed")
	require.Contains(t, html, "See you &lt;Monday&gt;")
	require.Contains(t, html, "https://fitbook.test/bookings")
	require.Contains(t, text, "See you <Monday>")
	require.Contains(t, text, "View my bookings: https://fitbook.test/bookings")
	require.Contains(t, text, "FitBook 2030")

	raw := string(n.compose("alice@example.test", "Réservation", html, text))
	require.Contains(t, raw, "From: FitBook <no-reply@fitbook.test>\r\n")
	require.Contains(t, raw, "To: alice@example.test\r\n")
	require.Contains(t, raw, "Subject: =?UTF-8?B?")
	require.Contains(t, raw, "Content-Type: multipart/alternative")
	require.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	require.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
}

func TestMimeWord(t *testing.T) {
	require.Equal(t, "Plain subject", mimeWord("Plain subject"))
	require.Equal(t, "=?UTF-8?B?Q2Fmw6k=?=", mimeWord("Café"))
}

func TestSMTPNotifier_FromHeaderWithoutName(t *testing.T) {
	cfg := testMailConfig()
	cfg.FromName = ""
	require.Equal(t, "no-reply@fitbook.test", NewSMTPNotifier(cfg, "FitBook").fromHeader())
}

func TestSMTPNotifier_DialFailure(t *testing.T) {
	n := NewSMTPNotifier(testMailConfig(), "FitBook")
	var dialed string
	n.dial = func(_ context.Context, addr string) (net.Conn, error) {
		dialed = addr
		return nil, errors.New("connection refused")
	}
	err := n.Notify(context.Background(), Message{To: "a@b.test", Subject: "hi", Body: "body"})
	require.EqualError(t, err, "connection refused")
	require.Equal(t, "smtp.test:587", dialed)
}

func TestSMTPNotifier_RequireTLS(t *testing.T) {
	cfg := testMailConfig()
	cfg.RequireTLS = true
	n := NewSMTPNotifier(cfg, "FitBook")

	client, server := net.Pipe()
	n.dial = func(context.Context, string) (net.Conn, error) { return client, nil }

	// A relay that never advertises STARTTLS.
	go func() {
		defer server.Close()
		buf := make([]byte, 512)
		_, _ = server.Write([]byte("220 smtp.test ESMTP\r\n"))
		for {
			k, err := server.Read(buf)
			if err != nil {
				return
			}
			line := strings.ToUpper(string(buf[:k]))
			switch {
			case strings.HasPrefix(line, "EHLO"):
				_, _ = server.Write([]byte("250-smtp.test\r\n250 AUTH PLAIN\r\n"))
			case strings.HasPrefix(line, "QUIT"):
				_, _ = server.Write([]byte("221 bye\r\n"))
				return
			default:
				_, _ = server.Write([]byte("250 ok\r\n"))
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := n.Notify(ctx, Message{To: "a@b.test", Subject: "hi", Body: "body"})
	require.ErrorContains(t, err, "does not offer STARTTLS")
}

type blockingNotifier struct {
	release chan struct{}
	sent    atomic.Int32
}

func (b *blockingNotifier) Notify(ctx context.Context, _ Message) error {
	select {
	case <-b.release:
		b.sent.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestDispatcher_CloseDrainsInFlight(t *testing.T) {
	next := &blockingNotifier{release: make(chan struct{})}
	d := NewDispatcher(next, zap.NewNop())

	// The request context ending must not abort delivery.
	reqCtx, cancelReq := context.WithCancel(context.Background())
	require.NoError(t, d.Notify(reqCtx, Message{To: "a@b.test"}))
	require.NoError(t, d.Notify(reqCtx, Message{To: "c@d.test"}))
	cancelReq()

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Close(short), context.DeadlineExceeded)

	close(next.release)
	require.NoError(t, d.Close(context.Background()))
	require.Equal(t, int32(2), next.sent.Load())

	require.Error(t, d.Notify(context.Background(), Message{To: "late@b.test"}))
}

func TestLogNotifier(t *testing.T) {
	require.NoError(t, NewLogNotifier(zap.NewNop()).Notify(context.Background(), Message{To: "a@b.test"}))
}
