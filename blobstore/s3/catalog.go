package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bytedoc/bytedoc/blobstore"
)

// DynamoDBClient is the subset of the DynamoDB API the catalog needs.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ErrConcurrentModification is returned when a competing writer commits
// the same snapshot version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// Catalog tracks the latest committed snapshot per document using
// DynamoDB conditional writes. S3 has no compare-and-swap, so the
// catalog provides the atomic version pointer that lets multiple
// writers coordinate safely.
//
// Table schema:
//   - Partition key: document (string)
//   - Sort key: version (number), monotonically increasing
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name bytedoc-snapshots \
//	  --attribute-definitions AttributeName=document,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=document,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Catalog struct {
	client    DynamoDBClient
	tableName string
}

// NewCatalog creates a snapshot catalog over the given table.
func NewCatalog(client DynamoDBClient, tableName string) *Catalog {
	return &Catalog{client: client, tableName: tableName}
}

// Snapshot is one committed catalog entry.
type Snapshot struct {
	Version uint64
	Blob    string
}

// Latest returns the newest committed snapshot for the document.
// Returns blobstore.ErrNotFound when no snapshot has been committed.
func (c *Catalog) Latest(ctx context.Context, document string) (Snapshot, error) {
	snap, err := c.latest(ctx, document)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.Version == 0 {
		return Snapshot{}, blobstore.ErrNotFound
	}
	return snap, nil
}

// Commit records a new snapshot blob for the document. The write is
// conditional on the next version number being unclaimed; a lost race
// surfaces as ErrConcurrentModification and the caller retries with a
// fresh blob name.
func (c *Catalog) Commit(ctx context.Context, document, blobName string) (uint64, error) {
	current, err := c.latest(ctx, document)
	if err != nil {
		return 0, err
	}

	next := current.Version + 1

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"document": &types.AttributeValueMemberS{Value: document},
			"version":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", next)},
			"blob":     &types.AttributeValueMemberS{Value: blobName},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, ErrConcurrentModification
		}
		return 0, fmt.Errorf("failed to commit snapshot version: %w", err)
	}

	return next, nil
}

// Forget removes a committed version, typically after its blob has been
// garbage collected. Removing a missing version is not an error.
func (c *Catalog) Forget(ctx context.Context, document string, version uint64) error {
	_, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"document": &types.AttributeValueMemberS{Value: document},
			"version":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", version)},
		},
	})
	return err
}

func (c *Catalog) latest(ctx context.Context, document string) (Snapshot, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("#doc = :doc"),
		ExpressionAttributeNames: map[string]string{
			"#doc": "document",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":doc": &types.AttributeValueMemberS{Value: document},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query snapshot catalog: %w", err)
	}

	if len(resp.Items) == 0 {
		return Snapshot{}, nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Snapshot{}, errors.New("invalid version attribute in catalog item")
	}
	blobAttr, ok := item["blob"].(*types.AttributeValueMemberS)
	if !ok {
		return Snapshot{}, errors.New("invalid blob attribute in catalog item")
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot version: %w", err)
	}

	return Snapshot{Version: version, Blob: blobAttr.Value}, nil
}
