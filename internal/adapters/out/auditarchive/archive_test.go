package auditarchive

import (
	"context"
	"errors"
	"testing"
	"time"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dynamoMock struct {
	mock.Mock
}

func (m *dynamoMock) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func entry(t *testing.T) *audit.Entry {
	t.Helper()
	e, err := audit.NewEntry(kernel.NewUUID(), audit.Record{
		EventType:  audit.OrderStatusChanged,
		ActorID:    "user-1",
		ActorRole:  "CLIENT",
		Action:     "transition",
		EntityType: audit.EntityOrder,
		EntityID:   "order-1",
		Metadata:   map[string]any{audit.KeyPreviousStatus: "DRAFT", audit.KeyNewStatus: "PENDING_PRO_CONFIRMATION"},
	}, time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return e
}

func TestArchive_Put(t *testing.T) {
	ddb := &dynamoMock{}
	e := entry(t)
	ddb.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		id, ok := in.Item["id"].(*types.AttributeValueMemberS)
		key, keyOK := in.Item["entity_key"].(*types.AttributeValueMemberS)
		return aws.ToString(in.TableName) == "audit" &&
			aws.ToString(in.ConditionExpression) == "attribute_not_exists(#id)" &&
			ok && id.Value == e.ID().String() &&
			keyOK && key.Value == "order#order-1"
	})).Return(&dynamodb.PutItemOutput{}, nil)

	require.NoError(t, NewArchive(ddb, "audit").Put(context.Background(), e))
	ddb.AssertExpectations(t)
}

func TestArchive_PutAlreadyArchived(t *testing.T) {
	ddb := &dynamoMock{}
	ddb.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")})

	assert.NoError(t, NewArchive(ddb, "").Put(context.Background(), entry(t)))
}

func TestArchive_PutFailure(t *testing.T) {
	ddb := &dynamoMock{}
	boom := errors.New("throttled")
	ddb.On("PutItem", mock.Anything, mock.Anything).Return(nil, boom)

	assert.ErrorIs(t, NewArchive(ddb, "").Put(context.Background(), entry(t)), boom)
}
