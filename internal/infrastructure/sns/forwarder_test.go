package sns

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-waba-webhooks/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*sns.PublishOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func update(banned bool) *domain.AccountUpdate {
	p := domain.AccountUpdateParams{
		ID:          "100",
		Timestamp:   time.Unix(1700000000, 0).UTC(),
		PhoneNumber: "15550001111",
		Event:       "VERIFIED_ACCOUNT",
		WabaInfo:    domain.WabaInfo{WabaID: "200"},
	}
	if banned {
		state := "DISABLE"
		p.Event = "DISABLED_UPDATE"
		p.WabaBanState = &state
	}
	return domain.NewAccountUpdate(nil, p)
}

func isTopicPublish(in *sns.PublishInput) bool { return in.TopicArn != nil }

func TestForward_PublishesToTopic(t *testing.T) {
	pub := new(mockPublisher)
	var got *sns.PublishInput
	pub.On("Publish", mock.Anything, mock.MatchedBy(isTopicPublish)).
		Run(func(args mock.Arguments) { got = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{}, nil).Once()

	f := NewForwarder(pub, "arn:topic", "+15550009999")
	require.NoError(t, f.Forward(context.Background(), update(false)))
	pub.AssertExpectations(t)

	assert.Equal(t, "arn:topic", *got.TopicArn)
	assert.Equal(t, "VERIFIED_ACCOUNT", *got.MessageAttributes["event"].StringValue)
	assert.Equal(t, "200", *got.MessageAttributes["waba_id"].StringValue)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(*got.Message), &body))
	assert.Equal(t, "100", body["id"])
}

func TestForward_BanSendsAlert(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(isTopicPublish)).Return(&sns.PublishOutput{}, nil).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return in.PhoneNumber != nil && *in.PhoneNumber == "+15550009999"
	})).Return(nil, errors.New("sms disabled")).Once()

	f := NewForwarder(pub, "arn:topic", "+15550009999")
	require.NoError(t, f.Forward(context.Background(), update(true)))
	pub.AssertExpectations(t)
}

func TestForward_NoAlertPhone(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(&sns.PublishOutput{}, nil).Once()

	f := NewForwarder(pub, "arn:topic", "")
	require.NoError(t, f.Forward(context.Background(), update(true)))
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestForward_PublishError(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	f := NewForwarder(pub, "arn:topic", "")
	assert.ErrorContains(t, f.Forward(context.Background(), update(false)), "sns publish")
}
