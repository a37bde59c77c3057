package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jeanbottein/zvote/logging"
)

type JudgmentStorage interface {
	GetByOption(ctx context.Context, optionID string) ([]*Judgment, error)
	GetByOptionAndVoter(ctx context.Context, optionID, voter string) (*Judgment, error)
	Put(ctx context.Context, judgment *Judgment) error
	Delete(ctx context.Context, optionID, voter string) error
	DeleteByOption(ctx context.Context, optionID string) error
}

// DynamoJudgmentStorage keys judgment rows by option (hash) and voter
// (range), mirroring the by-option and by-option-and-voter lookups the
// aggregator and ballot controller need.
type DynamoJudgmentStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoJudgmentStorage) GetByOption(ctx context.Context, optionID string) ([]*Judgment, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :option"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":option": &types.AttributeValueMemberS{Value: optionID},
		},
	})
	if err != nil {
		logging.Log.Errorf("JUDGMENT: failed to query ballots by option: %v", err)
		return nil, err
	}

	var judgments []*Judgment
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &judgments); err != nil {
		logging.Log.Errorf("JUDGMENT: failed to unmarshal ballots for option %s: %v", optionID, err)
		return nil, err
	}
	return judgments, nil
}

func (s *DynamoJudgmentStorage) GetByOptionAndVoter(ctx context.Context, optionID, voter string) (*Judgment, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": optionID, "SK": voter})
	if err != nil {
		logging.Log.Errorf("JUDGMENT: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("JUDGMENT: GET storage failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	var j *Judgment
	if err := attributevalue.UnmarshalMap(out.Item, &j); err != nil {
		logging.Log.Errorf("JUDGMENT: failed to unmarshal result: %v", err)
		return nil, err
	}
	return j, nil
}

func (s *DynamoJudgmentStorage) Put(ctx context.Context, judgment *Judgment) error {
	item, err := attributevalue.MarshalMap(judgment)
	if err != nil {
		logging.Log.Errorf("JUDGMENT: failed to marshal ballot: %v", err)
		return err
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("JUDGMENT: failed to put ballot: %v", err)
		return err
	}
	return nil
}

func (s *DynamoJudgmentStorage) Delete(ctx context.Context, optionID, voter string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": optionID, "SK": voter})
	if err != nil {
		logging.Log.Errorf("JUDGMENT: failed to marshal key: %v", err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("JUDGMENT: DEL storage item failed: %v", err)
		return err
	}
	return nil
}

func (s *DynamoJudgmentStorage) DeleteByOption(ctx context.Context, optionID string) error {
	rows, err := s.GetByOption(ctx, optionID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := s.Delete(ctx, row.OptionID, row.Voter); err != nil {
			return err
		}
	}
	return nil
}
