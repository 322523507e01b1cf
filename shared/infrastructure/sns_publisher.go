package infrastructure

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var _ messaging.Publisher = (*SNSPublisher)(nil)

const maxSNSBatchSize = 10

// SNSPublisher is the AWS rendition of the saga fanout: one SNS topic with an
// SQS queue subscribed per service. The envelope travels as the SNS message
// body; the type and headers are mirrored as message attributes for
// subscription filtering.
type SNSPublisher struct {
	client   *sns.Client
	topicArn string
}

// NewSNSPublisher creates a publisher for the given topic
func NewSNSPublisher(client *sns.Client, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

// Publish publishes messages to SNS in batches of at most ten
func (p *SNSPublisher) Publish(ctx context.Context, msgs ...*messaging.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	gr, ctx := errgroup.WithContext(ctx)
	for _, batch := range splitToChunks(msgs, maxSNSBatchSize) {
		batch := batch
		gr.Go(func() error {
			return p.batchPublish(ctx, batch)
		})
	}
	return gr.Wait()
}

func (p *SNSPublisher) batchPublish(ctx context.Context, msgs []*messaging.Message) error {
	entries := make([]types.PublishBatchRequestEntry, len(msgs))

	for i, msg := range msgs {
		body, err := msg.ToJSON()
		if err != nil {
			return err
		}

		attrs := map[string]types.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.Type),
			},
		}
		for k, v := range msg.Headers {
			attrs[k] = types.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(v),
			}
		}

		entries[i] = types.PublishBatchRequestEntry{
			Id:                aws.String(msg.ID.String()),
			Message:           aws.String(string(body)),
			MessageAttributes: attrs,
		}
	}

	res, err := p.client.PublishBatch(ctx, &sns.PublishBatchInput{
		TopicArn:                   &p.topicArn,
		PublishBatchRequestEntries: entries,
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish batch to SNS")
	}
	if len(res.Failed) > 0 {
		return errors.Errorf("SNS rejected %d of %d messages", len(res.Failed), len(entries))
	}

	return nil
}

// splitToChunks splits slice into chunks of specified size
func splitToChunks[T any](slice []T, chunkSize int) [][]T {
	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
