// Package db persists completed analysis results to DynamoDB, keyed by
// task ID. Persistence is optional: NewFromEnv returns nil when no
// endpoint is configured and every caller treats a nil client as "off".
package db

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"

	"github.com/tempokey/tempokey/constants"
	"github.com/tempokey/tempokey/model"
)

type Client struct {
	svc   *dynamodb.DynamoDB
	table string
}

// NewFromEnv builds a client from TEMPOKEY_DYNAMO_* variables. Returns
// (nil, nil) when TEMPOKEY_DYNAMO_ENDPOINT is unset.
func NewFromEnv() (*Client, error) {
	endpoint := constants.GetDynamoEndpoint()
	if endpoint == "" {
		return nil, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(constants.GetDynamoRegion()),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create DynamoDB session: %w", err)
	}
	return &Client{
		svc:   dynamodb.New(sess),
		table: constants.GetDynamoTable(),
	}, nil
}

// PutResult stores a completed result under the task ID.
func (c *Client) PutResult(taskID string, result *model.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not encode result: %w", err)
	}

	item := map[string]*dynamodb.AttributeValue{
		"PK":     {S: aws.String(taskID)},
		"Result": {S: aws.String(string(payload))},
		"BPM":    {N: aws.String(fmt.Sprintf("%.2f", result.Beat.BPM))},
	}
	if result.KeyName != "" {
		item["Key"] = &dynamodb.AttributeValue{S: aws.String(result.KeyName)}
	}

	_, err = c.svc.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("could not store result: %w", err)
	}
	return nil
}

// GetResult loads a previously stored result, or nil when absent.
func (c *Client) GetResult(taskID string) (*model.AnalysisResult, error) {
	out, err := c.svc.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(taskID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not load result: %w", err)
	}
	attr, ok := out.Item["Result"]
	if !ok || attr.S == nil {
		return nil, nil
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(*attr.S), &result); err != nil {
		return nil, fmt.Errorf("could not decode stored result: %w", err)
	}
	return &result, nil
}
