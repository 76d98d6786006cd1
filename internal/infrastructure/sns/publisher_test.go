package sns

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

func TestPublisher_Publish_EncodesEvent(t *testing.T) {
	m := &mockSNS{}
	var got *sns.PublishInput
	m.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{}, nil)

	p := NewPublisher(m, "arn:aws:sns:us-east-1:000000000000:security")
	err := p.Publish(context.Background(), &domain.ActivityLog{
		UserID:    "u1",
		Action:    domain.ActionOTPFailed,
		IPAddress: "1.2.3.4",
		Details:   "Invalid OTP",
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:security", aws.ToString(got.TopicArn))
	var ev SecurityEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(got.Message)), &ev))
	assert.Equal(t, domain.ActionOTPFailed, ev.Action)
	assert.Equal(t, "Invalid OTP", ev.Details)
	assert.Equal(t, "otp_failed", aws.ToString(got.MessageAttributes["action"].StringValue))
}

func TestPublisher_Publish_Error(t *testing.T) {
	m := &mockSNS{}
	m.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	p := NewPublisher(m, "arn")
	err := p.Publish(context.Background(), &domain.ActivityLog{Action: domain.ActionLogoutFailed})
	assert.ErrorIs(t, err, domain.ErrDependency)
}
