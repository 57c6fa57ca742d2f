// Package auditarchive copies audit entries to a DynamoDB table for long-term
// retention. Postgres stays the source of truth; the archive is write-once.
//
// Table requirements:
//   - PK: id (string)
//   - GSI entity_key-index (PK: entity_key, SK: created_at) for per-entity reads
package auditarchive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking/internal/core/domain/model/audit"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const DefaultTableName = "audit_entries"

type Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Table           string
}

type putItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type entryItem struct {
	ID         string         `dynamodbav:"id"`
	EntityKey  string         `dynamodbav:"entity_key"`
	EventType  string         `dynamodbav:"event_type"`
	ActorID    string         `dynamodbav:"actor_id"`
	ActorRole  string         `dynamodbav:"actor_role"`
	Action     string         `dynamodbav:"action"`
	EntityType string         `dynamodbav:"entity_type"`
	EntityID   string         `dynamodbav:"entity_id"`
	Metadata   map[string]any `dynamodbav:"metadata,omitempty"`
	CreatedAt  string         `dynamodbav:"created_at"`
}

type Archive struct {
	ddb       putItemAPI
	tableName string
}

func NewArchive(ddb putItemAPI, table string) *Archive {
	if table == "" {
		table = DefaultTableName
	}
	return &Archive{ddb: ddb, tableName: table}
}

// Put writes the entry once. An entry that is already archived counts as success,
// so an export batch interrupted before MarkExported can simply run again.
func (a *Archive) Put(ctx context.Context, e *audit.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(toItem(e))
	if err != nil {
		return fmt.Errorf("marshal audit entry %s: %w", e.ID(), err)
	}

	_, err = a.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(a.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	var exists *types.ConditionalCheckFailedException
	if errors.As(err, &exists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("archive audit entry %s: %w", e.ID(), err)
	}
	return nil
}

func toItem(e *audit.Entry) entryItem {
	return entryItem{
		ID:         e.ID().String(),
		EntityKey:  e.EntityType() + "#" + e.EntityID(),
		EventType:  string(e.EventType()),
		ActorID:    e.ActorID(),
		ActorRole:  e.ActorRole(),
		Action:     e.Action(),
		EntityType: e.EntityType(),
		EntityID:   e.EntityID(),
		Metadata:   e.Metadata(),
		CreatedAt:  e.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
}

// NewClient builds a DynamoDB client. Local endpoints (DynamoDB Local, LocalStack)
// do not check credentials but the SDK still requires some.
func NewClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	accessKey, secretKey := cfg.AccessKeyID, cfg.SecretAccessKey
	if accessKey == "" {
		accessKey = "local"
	}
	if secretKey == "" {
		secretKey = "local"
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == dynamodb.ServiceID {
				return aws.Endpoint{URL: endpoint, SigningRegion: region, HostnameImmutable: true}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, config.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg), nil
}
