package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jeanbottein/zvote/logging"
)

type SummaryStorage interface {
	Get(ctx context.Context, optionID string) (*MjSummary, error)
	GetByVote(ctx context.Context, voteID string) ([]*MjSummary, error)
	Put(ctx context.Context, summary *MjSummary) error
	DeleteByVote(ctx context.Context, voteID string) error
}

// DynamoSummaryStorage keys summaries by option id so the aggregator can
// upsert with a plain PutItem.
type DynamoSummaryStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoSummaryStorage) Get(ctx context.Context, optionID string) (*MjSummary, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": optionID})
	if err != nil {
		logging.Log.Errorf("SUMMARY: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("SUMMARY: GET storage failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	var summary *MjSummary
	if err := attributevalue.UnmarshalMap(out.Item, &summary); err != nil {
		logging.Log.Errorf("SUMMARY: failed to unmarshal result: %v", err)
		return nil, err
	}
	return summary, nil
}

func (s *DynamoSummaryStorage) GetByVote(ctx context.Context, voteID string) ([]*MjSummary, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		IndexName:              aws.String("ByVote"),
		KeyConditionExpression: aws.String("VoteID = :vote"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":vote": &types.AttributeValueMemberS{Value: voteID},
		},
	})
	if err != nil {
		logging.Log.Errorf("SUMMARY: failed to query summaries by vote: %v", err)
		return nil, err
	}

	var summaries []*MjSummary
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &summaries); err != nil {
		logging.Log.Errorf("SUMMARY: failed to unmarshal summaries for vote %s: %v", voteID, err)
		return nil, err
	}
	return summaries, nil
}

func (s *DynamoSummaryStorage) Put(ctx context.Context, summary *MjSummary) error {
	item, err := attributevalue.MarshalMap(summary)
	if err != nil {
		logging.Log.Errorf("SUMMARY: failed to marshal summary: %v", err)
		return err
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("SUMMARY: failed to upsert summary: %v", err)
		return err
	}
	return nil
}

func (s *DynamoSummaryStorage) DeleteByVote(ctx context.Context, voteID string) error {
	summaries, err := s.GetByVote(ctx, voteID)
	if err != nil {
		return err
	}
	for _, summary := range summaries {
		key, err := attributevalue.MarshalMap(map[string]string{"PK": summary.OptionID})
		if err != nil {
			logging.Log.Errorf("SUMMARY: failed to marshal key: %v", err)
			return err
		}
		_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: &s.TableName,
			Key:       key,
		})
		if err != nil {
			logging.Log.Errorf("SUMMARY: DEL storage item failed: %v", err)
			return err
		}
	}
	return nil
}
