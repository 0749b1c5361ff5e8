package alert

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESSink delivers alerts as email through AWS SESv2. Recipients are
// expected to be email addresses when this sink is configured.
type SESSink struct {
	client    *sesv2.Client
	fromEmail string
}

func NewSESSink(cfg aws.Config, fromEmail string) (*SESSink, error) {
	if fromEmail == "" {
		return nil, fmt.Errorf("ses sink: from email is not set")
	}
	return &SESSink{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
	}, nil
}

func (s *SESSink) Show(ctx context.Context, recipient, title, body string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(title)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	return err
}
