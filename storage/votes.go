package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jeanbottein/zvote/logging"
)

type VoteStorage interface {
	Get(ctx context.Context, id string) (*Vote, error)
	GetByToken(ctx context.Context, token string) (*Vote, error)
	GetByCreator(ctx context.Context, creator string) ([]*Vote, error)
	Create(ctx context.Context, vote *Vote) error
	Delete(ctx context.Context, id string) error
}

type DynamoVoteStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoVoteStorage) Get(ctx context.Context, id string) (*Vote, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("VOTE: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("VOTE: GET storage failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	var v *Vote
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal result: %v", err)
		return nil, err
	}
	return v, nil
}

func (s *DynamoVoteStorage) GetByToken(ctx context.Context, token string) (*Vote, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		IndexName:              aws.String("ByToken"),
		KeyConditionExpression: aws.String("#t = :token"),
		ExpressionAttributeNames: map[string]string{
			"#t": "Token",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":token": &types.AttributeValueMemberS{Value: token},
		},
	})
	if err != nil {
		logging.Log.Errorf("VOTE: failed to query vote by token: %v", err)
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrItemNotFound
	}

	var votes []*Vote
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &votes); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal vote for token: %v", err)
		return nil, err
	}
	return votes[0], nil
}

func (s *DynamoVoteStorage) GetByCreator(ctx context.Context, creator string) ([]*Vote, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		IndexName:              aws.String("ByCreator"),
		KeyConditionExpression: aws.String("Creator = :creator"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":creator": &types.AttributeValueMemberS{Value: creator},
		},
	})
	if err != nil {
		logging.Log.Errorf("VOTE: failed to query votes by creator: %v", err)
		return nil, err
	}

	var votes []*Vote
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &votes); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal votes for creator: %v", err)
		return nil, err
	}
	return votes, nil
}

func (s *DynamoVoteStorage) Create(ctx context.Context, vote *Vote) error {
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now().UTC()
	}
	item, err := attributevalue.MarshalMap(vote)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to marshal vote: %v", err)
		return err
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("VOTE: failed to create vote: %v", err)
		return err
	}
	return nil
}

func (s *DynamoVoteStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("VOTE: failed to marshal key: %v", err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("VOTE: DEL storage item failed: %v", err)
		return err
	}
	return nil
}
