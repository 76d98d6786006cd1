package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/jeeva2692001/mindkonnect/internal/config"
	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

// API is the subset of the SNS client the publisher uses.
type API interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SecurityEvent is the JSON body published for security-relevant actions.
type SecurityEvent struct {
	UserID    string        `json:"user_id,omitempty"`
	Action    domain.Action `json:"action"`
	IPAddress string        `json:"ip_address"`
	Details   string        `json:"details"`
	Timestamp string        `json:"timestamp"`
}

// Publisher fans security events out to an SNS topic.
type Publisher struct {
	client   API
	topicARN string
}

// NewClient builds an SNS client, honouring the LocalStack endpoint override.
func NewClient(awsCfg aws.Config, cfg *config.Config) *sns.Client {
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return sns.NewFromConfig(awsCfg, opts...)
}

func NewPublisher(client API, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

func (p *Publisher) Publish(ctx context.Context, entry *domain.ActivityLog) error {
	body, err := json.Marshal(SecurityEvent{
		UserID:    entry.UserID,
		Action:    entry.Action,
		IPAddress: entry.IPAddress,
		Details:   entry.Details,
		Timestamp: entry.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("marshal security event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("security event: " + string(entry.Action)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"action": {DataType: aws.String("String"), StringValue: aws.String(string(entry.Action))},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w: %v", domain.ErrDependency, err)
	}
	return nil
}
