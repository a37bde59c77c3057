package storage

import (
	"context"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jeanbottein/zvote/logging"
)

type VoteOptionStorage interface {
	Get(ctx context.Context, id string) (*VoteOption, error)
	GetByVote(ctx context.Context, voteID string) ([]*VoteOption, error)
	Create(ctx context.Context, option *VoteOption) error
	SetApprovalsCount(ctx context.Context, id string, count int) error
	Delete(ctx context.Context, id string) error
}

type DynamoVoteOptionStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoVoteOptionStorage) Get(ctx context.Context, id string) (*VoteOption, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("OPTION: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("OPTION: GET storage failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	var opt *VoteOption
	if err := attributevalue.UnmarshalMap(out.Item, &opt); err != nil {
		logging.Log.Errorf("OPTION: failed to unmarshal result: %v", err)
		return nil, err
	}
	return opt, nil
}

func (s *DynamoVoteOptionStorage) GetByVote(ctx context.Context, voteID string) ([]*VoteOption, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		IndexName:              aws.String("ByVote"),
		KeyConditionExpression: aws.String("VoteID = :vote"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":vote": &types.AttributeValueMemberS{Value: voteID},
		},
	})
	if err != nil {
		logging.Log.Errorf("OPTION: failed to query options by vote: %v", err)
		return nil, err
	}

	var options []*VoteOption
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &options); err != nil {
		logging.Log.Errorf("OPTION: failed to unmarshal options for vote %s: %v", voteID, err)
		return nil, err
	}

	sort.Slice(options, func(i, j int) bool {
		return options[i].OrderIndex < options[j].OrderIndex
	})
	return options, nil
}

func (s *DynamoVoteOptionStorage) Create(ctx context.Context, option *VoteOption) error {
	item, err := attributevalue.MarshalMap(option)
	if err != nil {
		logging.Log.Errorf("OPTION: failed to marshal option: %v", err)
		return err
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		logging.Log.Errorf("OPTION: failed to create option: %v", err)
		return err
	}
	return nil
}

func (s *DynamoVoteOptionStorage) SetApprovalsCount(ctx context.Context, id string, count int) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("SET ApprovalsCount = :val"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":val": &types.AttributeValueMemberN{Value: strconv.Itoa(count)},
		},
	})
	if err != nil {
		logging.Log.Errorf("OPTION: failed to set approvals count for %s: %v", id, err)
	}
	return err
}

func (s *DynamoVoteOptionStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("OPTION: failed to marshal key: %v", err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("OPTION: DEL storage item failed: %v", err)
		return err
	}
	return nil
}
