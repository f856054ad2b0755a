package s3

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bytedoc/bytedoc/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDynamoDBClient is an in-memory DynamoDB mock.
type mockDynamoDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue
}

func newMockDynamoDBClient() *mockDynamoDBClient {
	return &mockDynamoDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func itemKey(doc, version string) string {
	return doc + ":" + version
}

func (m *mockDynamoDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := params.Item["document"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := itemKey(doc, version)

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamoDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc := params.ExpressionAttributeValues[":doc"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["document"].(*types.AttributeValueMemberS).Value == doc {
			items = append(items, item)
		}
	}

	// Descending by numeric version. Versions here stay short enough
	// that padding is unnecessary for the string compare.
	for i := 0; i < len(items)-1; i++ {
		for j := i + 1; j < len(items); j++ {
			vi := items[i]["version"].(*types.AttributeValueMemberN).Value
			vj := items[j]["version"].(*types.AttributeValueMemberN).Value
			if len(vi) < len(vj) || (len(vi) == len(vj) && vi < vj) {
				items[i], items[j] = items[j], items[i]
			}
		}
	}

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func (m *mockDynamoDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := params.Key["document"].(*types.AttributeValueMemberS).Value
	version := params.Key["version"].(*types.AttributeValueMemberN).Value
	delete(m.items, itemKey(doc, version))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestCatalog_LatestEmpty(t *testing.T) {
	catalog := NewCatalog(newMockDynamoDBClient(), "bytedoc-snapshots")

	_, err := catalog.Latest(context.Background(), "doc-a")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCatalog_CommitAndLatest(t *testing.T) {
	catalog := NewCatalog(newMockDynamoDBClient(), "bytedoc-snapshots")
	ctx := context.Background()

	v1, err := catalog.Commit(ctx, "doc-a", "doc-a/000001.bds")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v1)

	v2, err := catalog.Commit(ctx, "doc-a", "doc-a/000002.bds")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v2)

	snap, err := catalog.Latest(ctx, "doc-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Version)
	assert.Equal(t, "doc-a/000002.bds", snap.Blob)

	// Documents are independent.
	_, err = catalog.Latest(ctx, "doc-b")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

// staleQueryClient serves queries that lag behind the table contents,
// simulating a competing writer sneaking in between query and put.
type staleQueryClient struct {
	*mockDynamoDBClient
	stale *dynamodb.QueryOutput
}

func (c *staleQueryClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return c.stale, nil
}

func TestCatalog_ConcurrentCommit(t *testing.T) {
	ddb := newMockDynamoDBClient()
	ctx := context.Background()

	// Version 1 is already committed.
	_, err := NewCatalog(ddb, "bytedoc-snapshots").Commit(ctx, "doc-a", "doc-a/000001.bds")
	require.NoError(t, err)

	// This writer still believes the table is empty, so its commit
	// targets version 1 and loses the conditional write.
	stale := &staleQueryClient{
		mockDynamoDBClient: ddb,
		stale:              &dynamodb.QueryOutput{},
	}
	_, err = NewCatalog(stale, "bytedoc-snapshots").Commit(ctx, "doc-a", "doc-a/loser.bds")
	assert.ErrorIs(t, err, ErrConcurrentModification)

	snap, err := NewCatalog(ddb, "bytedoc-snapshots").Latest(ctx, "doc-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, "doc-a/000001.bds", snap.Blob)
}

func TestCatalog_Forget(t *testing.T) {
	catalog := NewCatalog(newMockDynamoDBClient(), "bytedoc-snapshots")
	ctx := context.Background()

	_, err := catalog.Commit(ctx, "doc-a", "doc-a/000001.bds")
	require.NoError(t, err)

	require.NoError(t, catalog.Forget(ctx, "doc-a", 1))

	_, err = catalog.Latest(ctx, "doc-a")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	// Forgetting a missing version is fine.
	require.NoError(t, catalog.Forget(ctx, "doc-a", 42))
}
