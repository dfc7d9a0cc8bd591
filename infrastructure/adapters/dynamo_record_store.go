package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/google/uuid"

	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/domain"
)

type dynamoRecordStore struct {
	logger    outbound.LoggerPort
	dynamoSvc *dynamodb.DynamoDB
}

func NewDynamoRecordStore(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB) outbound.RecordStorePort {
	return &dynamoRecordStore{
		logger:    logger,
		dynamoSvc: dynamoSvc,
	}
}

// Insert writes one record as a row of the named table. Field names become
// attribute names; field kinds collapse to string attributes, with a
// kind-suffixed attribute preserving the tag so rows stay self-describing.
func (s *dynamoRecordStore) Insert(ctx context.Context, collection string, record domain.Record) error {
	item := map[string]*dynamodb.AttributeValue{
		"id":          {S: aws.String(uuid.NewString())},
		"inserted_at": {S: aws.String(time.Now().UTC().Format(time.RFC3339))},
	}
	for _, field := range record.Fields {
		item[field.Name] = &dynamodb.AttributeValue{S: aws.String(field.StringValue())}
		item[field.Name+"_kind"] = &dynamodb.AttributeValue{S: aws.String(string(field.Kind))}
	}

	input := &dynamodb.PutItemInput{
		Item:      item,
		TableName: aws.String(collection),
	}

	if _, err := s.dynamoSvc.PutItemWithContext(ctx, input); err != nil {
		s.logger.ErrorWithFields(err, "Failed to insert record", map[string]interface{}{
			"collection": collection,
		})
		return err
	}

	return nil
}
