package notification_test

import (
	"context"
	"errors"
	"testing"

	"go-hris-iam/internal/notification"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	t.Run("builds request", func(t *testing.T) {
		client := &fakeSES{}
		sender := notification.NewSESSender(client, "no-reply@hris.test")

		err := sender.Send(context.Background(), notification.ResetMessage("a@x.com", "https://app/reset-password/abc"))

		require.NoError(t, err)
		require.NotNil(t, client.input)
		assert.Equal(t, "no-reply@hris.test", aws.ToString(client.input.Source))
		assert.Equal(t, []string{"a@x.com"}, client.input.Destination.ToAddresses)
		assert.Contains(t, aws.ToString(client.input.Message.Body.Text.Data), "https://app/reset-password/abc")
		assert.NotNil(t, client.input.Message.Body.Html)
	})

	t.Run("wraps provider error", func(t *testing.T) {
		sender := notification.NewSESSender(&fakeSES{err: errors.New("throttled")}, "no-reply@hris.test")

		err := sender.Send(context.Background(), notification.ResetMessage("a@x.com", "link"))

		assert.ErrorIs(t, err, notification.ErrSendFailed)
	})

	t.Run("rejects empty recipient", func(t *testing.T) {
		client := &fakeSES{}
		sender := notification.NewSESSender(client, "no-reply@hris.test")

		err := sender.Send(context.Background(), notification.Message{Subject: "s", TextBody: "b"})

		assert.Error(t, err)
		assert.Nil(t, client.input)
	})
}

func TestLogSender_DoesNotLogBody(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := notification.NewLogSender(zap.New(core))

	msg := notification.CredentialsMessage("e@x.com", "Eve", "temp-secret-123", "https://app/login")
	require.NoError(t, sender.Send(context.Background(), msg))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	for _, f := range entry.Context {
		assert.NotContains(t, f.String, "temp-secret-123")
	}
	assert.Equal(t, "e@x.com", entry.ContextMap()["to"])
}

func TestMessageBuilders(t *testing.T) {
	creds := notification.CredentialsMessage("e@x.com", "Eve", "pw", "https://app/login")
	assert.Contains(t, creds.TextBody, "pw")
	assert.NoError(t, creds.Validate())

	invite := notification.InviteMessage("e@x.com", "Eve", "https://app/reset-password/tok")
	assert.Contains(t, invite.TextBody, "24 hours")
	assert.Contains(t, invite.HTMLBody, "https://app/reset-password/tok")
}
