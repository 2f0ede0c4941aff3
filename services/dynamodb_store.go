package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guesser/config"
	"guesser/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const dynamoTable = "Conversations"

// DynamoAPI is the subset of *dynamodb.Client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoDBStore keeps one item per turn: hash key "id" (conversation id),
// range key "seq" (ULID, insertion order).
type DynamoDBStore struct {
	db    DynamoAPI
	table string
	seq   *sequencer
}

// NewDynamoDBStore loads AWS config and makes sure the table exists.
// A non-empty cfg.URI is used as a custom endpoint (e.g. DynamoDB Local).
func NewDynamoDBStore(ctx context.Context, cfg config.StoreConfig) (*DynamoDBStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.URI != "" {
		endpoint := cfg.URI
		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(customResolver))

		if cfg.AccessKeyID != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, "",
			)))
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	st := NewDynamoDBStoreWithClient(dynamodb.NewFromConfig(awsCfg), dynamoTable)
	if err := st.ensureTableExists(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func NewDynamoDBStoreWithClient(db DynamoAPI, table string) *DynamoDBStore {
	if table == "" {
		table = dynamoTable
	}
	return &DynamoDBStore{db: db, table: table, seq: newSequencer()}
}

func (s *DynamoDBStore) ensureTableExists(ctx context.Context) error {
	_, err := s.db.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("id"),
				AttributeType: types.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String("seq"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("id"),
				KeyType:       types.KeyTypeHash, // partition key
			},
			{
				AttributeName: aws.String("seq"),
				KeyType:       types.KeyTypeRange, // sort key
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *DynamoDBStore) Append(ctx context.Context, conversationID string, role models.Role, content string) error {
	seq, now, err := s.seq.Next()
	if err != nil {
		return storageErr("append", err)
	}

	turn := models.Turn{
		ID:             newTurnID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Seq:            seq,
		CreatedAt:      now,
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      turnToItem(turn),
	})
	if err != nil {
		return storageErr("append", err)
	}
	return nil
}

// ReadAll uses strongly consistent reads so a turn written by this request
// is always part of the result.
func (s *DynamoDBStore) ReadAll(ctx context.Context, conversationID string) ([]models.Turn, error) {
	turns := make([]models.Turn, 0)

	paginator := dynamodb.NewQueryPaginator(s.db, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#id = :id"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: conversationID},
		},
		ScanIndexForward: aws.Bool(true), // oldest first
		ConsistentRead:   aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storageErr("read", err)
		}
		for _, item := range page.Items {
			turns = append(turns, itemToTurn(item))
		}
	}
	return turns, nil
}

func (s *DynamoDBStore) Close(_ context.Context) error { return nil }

func turnToItem(t models.Turn) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":        &types.AttributeValueMemberS{Value: t.ConversationID},
		"seq":       &types.AttributeValueMemberS{Value: t.Seq},
		"turnId":    &types.AttributeValueMemberS{Value: t.ID},
		"role":      &types.AttributeValueMemberS{Value: string(t.Role)},
		"content":   &types.AttributeValueMemberS{Value: t.Content},
		"createdAt": &types.AttributeValueMemberS{Value: t.CreatedAt.Format(time.RFC3339Nano)},
	}
}

func itemToTurn(item map[string]types.AttributeValue) models.Turn {
	createdAt, _ := time.Parse(time.RFC3339Nano, stringAttr(item, "createdAt"))
	return models.Turn{
		ID:             stringAttr(item, "turnId"),
		ConversationID: stringAttr(item, "id"),
		Role:           models.Role(stringAttr(item, "role")),
		Content:        stringAttr(item, "content"),
		Seq:            stringAttr(item, "seq"),
		CreatedAt:      createdAt,
	}
}

// stringAttr tolerates missing attributes; only id and seq are enforced by the table.
func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

var _ ConversationStore = (*DynamoDBStore)(nil)
