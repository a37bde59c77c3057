package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jeanbottein/zvote/logging"
)

type ApprovalStorage interface {
	Get(ctx context.Context, voteID, voter, optionID string) (*Approval, error)
	GetByVoteAndVoter(ctx context.Context, voteID, voter string) ([]*Approval, error)
	Create(ctx context.Context, approval *Approval) error
	Delete(ctx context.Context, voteID, voter, optionID string) error
	DeleteByVote(ctx context.Context, voteID string) error
}

// DynamoApprovalStorage keys approval rows by vote (hash) and voter#option
// (range) so the voter's ballot for a vote is one begins_with query.
type DynamoApprovalStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoApprovalStorage) Get(ctx context.Context, voteID, voter, optionID string) (*Approval, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": voteID,
		"SK": ApprovalSortKey(voter, optionID),
	})
	if err != nil {
		logging.Log.Errorf("APPROVAL: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("APPROVAL: GET storage failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	var a *Approval
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		logging.Log.Errorf("APPROVAL: failed to unmarshal result: %v", err)
		return nil, err
	}
	return a, nil
}

func (s *DynamoApprovalStorage) GetByVoteAndVoter(ctx context.Context, voteID, voter string) ([]*Approval, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :vote AND begins_with(SK, :voter)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":vote":  &types.AttributeValueMemberS{Value: voteID},
			":voter": &types.AttributeValueMemberS{Value: voter + "#"},
		},
	})
	if err != nil {
		logging.Log.Errorf("APPROVAL: failed to query ballots by vote and voter: %v", err)
		return nil, err
	}

	var approvals []*Approval
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &approvals); err != nil {
		logging.Log.Errorf("APPROVAL: failed to unmarshal ballots for vote %s: %v", voteID, err)
		return nil, err
	}
	return approvals, nil
}

func (s *DynamoApprovalStorage) Create(ctx context.Context, approval *Approval) error {
	if approval.SortKey == "" {
		approval.SortKey = ApprovalSortKey(approval.Voter, approval.OptionID)
	}
	if approval.Timestamp.IsZero() {
		approval.Timestamp = time.Now().UTC()
	}
	item, err := attributevalue.MarshalMap(approval)
	if err != nil {
		logging.Log.Errorf("APPROVAL: failed to marshal ballot: %v", err)
		return err
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("APPROVAL: failed to create ballot: %v", err)
		return err
	}
	return nil
}

func (s *DynamoApprovalStorage) Delete(ctx context.Context, voteID, voter, optionID string) error {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": voteID,
		"SK": ApprovalSortKey(voter, optionID),
	})
	if err != nil {
		logging.Log.Errorf("APPROVAL: failed to marshal key: %v", err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("APPROVAL: DEL storage item failed: %v", err)
		return err
	}
	return nil
}

func (s *DynamoApprovalStorage) DeleteByVote(ctx context.Context, voteID string) error {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :vote"),
		ProjectionExpression:   aws.String("PK, SK"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":vote": &types.AttributeValueMemberS{Value: voteID},
		},
	})
	if err != nil {
		logging.Log.Errorf("APPROVAL: failed to query ballots for delete: %v", err)
		return err
	}

	for _, item := range out.Items {
		_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: &s.TableName,
			Key: map[string]types.AttributeValue{
				"PK": item["PK"],
				"SK": item["SK"],
			},
		})
		if err != nil {
			logging.Log.Errorf("APPROVAL: batch delete failed: %v", err)
			return err
		}
	}
	return nil
}
