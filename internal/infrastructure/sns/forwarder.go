package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-waba-webhooks/internal/config"
	"github.com/go-waba-webhooks/internal/domain"
)

// PublishAPI is the part of *sns.Client the forwarder uses.
type PublishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Forwarder publishes account updates to an SNS topic and, for bans,
// texts an alert phone.
type Forwarder struct {
	api        PublishAPI
	topicARN   string
	alertPhone string
}

// NewClient creates an SNS client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint so all traffic goes to the local instance.
func NewClient(ctx context.Context, cfg *config.Config) (*sns.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return sns.NewFromConfig(awsCfg, clientOpts...), nil
}

func NewForwarder(api PublishAPI, topicARN, alertPhone string) *Forwarder {
	return &Forwarder{api: api, topicARN: topicARN, alertPhone: alertPhone}
}

// Forward publishes u as JSON with event and waba_id message attributes.
func (f *Forwarder) Forward(ctx context.Context, u *domain.AccountUpdate) error {
	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal account update: %w", err)
	}
	_, err = f.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(f.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event":   stringAttr(u.Event()),
			"waba_id": stringAttr(u.WabaInfo().WabaID),
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}

	if f.alertPhone != "" && u.Banned() {
		state, _ := u.WabaBanState()
		msg := fmt.Sprintf("WABA %s (%s): %s, ban state %s", u.WabaInfo().WabaID, u.PhoneNumber(), u.Event(), state)
		if err := f.SendSMS(ctx, f.alertPhone, msg); err != nil {
			// Alerts are best effort.
			slog.WarnContext(ctx, "could not send ban alert", "waba_id", u.ID(), "err", err)
		}
	}
	return nil
}

func (f *Forwarder) SendSMS(ctx context.Context, to, message string) error {
	_, err := f.api.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	})
	return err
}

func stringAttr(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
}
