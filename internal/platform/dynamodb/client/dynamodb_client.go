package client

import (
	"context"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBClient wraps the AWS DynamoDB client behind the network gate.
type DynamoDBClient struct {
	client   *dynamodb.Client
	disabled atomic.Bool
}

// NewDynamoDBClient creates a new DynamoDB client
func NewDynamoDBClient(ctx context.Context, region string) (*DynamoDBClient, error) {
	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}

	return &DynamoDBClient{
		client: dynamodb.NewFromConfig(cfg),
	}, nil
}

// NewDynamoDBClientFrom wraps an already-constructed DynamoDB client.
func NewDynamoDBClientFrom(client *dynamodb.Client) *DynamoDBClient {
	return &DynamoDBClient{client: client}
}

// GetItem implements the Client.GetItem method
func (c *DynamoDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if c.disabled.Load() {
		return nil, ErrNetworkDisabled
	}
	return c.client.GetItem(ctx, params, optFns...)
}

// PutItem implements the Client.PutItem method
func (c *DynamoDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if c.disabled.Load() {
		return nil, ErrNetworkDisabled
	}
	return c.client.PutItem(ctx, params, optFns...)
}

// UpdateItem implements the Client.UpdateItem method
func (c *DynamoDBClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if c.disabled.Load() {
		return nil, ErrNetworkDisabled
	}
	return c.client.UpdateItem(ctx, params, optFns...)
}

// DeleteItem implements the Client.DeleteItem method
func (c *DynamoDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if c.disabled.Load() {
		return nil, ErrNetworkDisabled
	}
	return c.client.DeleteItem(ctx, params, optFns...)
}

// Query implements the Client.Query method
func (c *DynamoDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if c.disabled.Load() {
		return nil, ErrNetworkDisabled
	}
	return c.client.Query(ctx, params, optFns...)
}

// EnableNetwork implements the Client.EnableNetwork method
func (c *DynamoDBClient) EnableNetwork() error {
	c.disabled.Store(false)
	return nil
}

// DisableNetwork implements the Client.DisableNetwork method
func (c *DynamoDBClient) DisableNetwork() error {
	c.disabled.Store(true)
	return nil
}
