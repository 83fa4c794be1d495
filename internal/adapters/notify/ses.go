package notify

import (
	"context"
	"errors"
	"route-watch-service/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESConfig is the [ses] section of the configuration file.
type SESConfig struct {
	From    string   `mapstructure:"from" json:"from" yaml:"from" validate:"required,email"`
	To      []string `mapstructure:"to" json:"to" yaml:"to" validate:"required,min=1,dive,email"`
	Subject string   `mapstructure:"subject" json:"subject,omitempty" yaml:"subject,omitempty"`
	Region  string   `mapstructure:"region" json:"region,omitempty" yaml:"region,omitempty"`
}

type emailSender interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESNotifier emails alerts through Amazon SES.
type SESNotifier struct {
	client  emailSender
	from    string
	to      []string
	subject string
}

// NewSESNotifier loads AWS credentials from the default chain.
func NewSESNotifier(ctx context.Context, cfg SESConfig) (*SESNotifier, error) {
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, errors.New("ses notifier: from and to are required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newSESNotifier(sesv2.NewFromConfig(awsCfg), cfg), nil
}

func newSESNotifier(client emailSender, cfg SESConfig) *SESNotifier {
	subject := cfg.Subject
	if subject == "" {
		subject = "Traffic Alert"
	}
	return &SESNotifier{client: client, from: cfg.From, to: cfg.To, subject: subject}
}

func (s *SESNotifier) Send(ctx context.Context, message string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: s.to},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(s.subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(message), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return &domain.NotificationError{Notifier: "ses", Err: err}
	}
	return nil
}
