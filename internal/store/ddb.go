package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

const manifestSK = "#MANIFEST"

// DynamoSink stores player rows under a run-scoped partition
// (PK=<category>#<season>#<run>, SK=player) and then points the season's
// manifest item (PK=<category>#<season>, SK=#MANIFEST) at that run.
// Readers resolve CurrentRun first, so a season is never seen half written.
type DynamoSink struct {
	Client DynamoDBAPI
	Table  string
	// RunID scopes this process's writes; NewRunID is used when empty.
	RunID string
	Now   func() time.Time
	// Backoff between unprocessed-item retries; tests set it to zero.
	Backoff time.Duration
}

func NewDynamoSink(client DynamoDBAPI, table string) *DynamoSink {
	return &DynamoSink{Client: client, Table: table, Backoff: 120 * time.Millisecond}
}

func NewRunID(now time.Time) string { return now.UTC().Format("20060102T150405Z") }

func seasonPK(k Key) string { return fmt.Sprintf("%s#%d", k.Category, k.Season) }

func (s *DynamoSink) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DynamoSink) Put(ctx context.Context, k Key, t *bbref.Table) error {
	if s.RunID == "" {
		s.RunID = NewRunID(s.now())
	}
	p := t.PlayerIndex()
	if p < 0 {
		return fmt.Errorf("dynamodb put %s: no player column", k)
	}
	pk := seasonPK(k) + "#" + s.RunID
	now := strconv.FormatInt(s.now().Unix(), 10)

	const maxBatch = 25
	for i := 0; i < len(t.Rows); i += maxBatch {
		end := i + maxBatch
		if end > len(t.Rows) {
			end = len(t.Rows)
		}

		reqs := make([]types.WriteRequest, 0, end-i)
		for j := i; j < end; j++ {
			r := t.Rows[j]
			item := map[string]types.AttributeValue{
				"PK":        &types.AttributeValueMemberS{Value: pk},
				"SK":        &types.AttributeValueMemberS{Value: r[p].Text},
				"Category":  &types.AttributeValueMemberS{Value: k.Category.String()},
				"Season":    &types.AttributeValueMemberN{Value: strconv.Itoa(k.Season)},
				"RunID":     &types.AttributeValueMemberS{Value: s.RunID},
				"Ord":       &types.AttributeValueMemberN{Value: strconv.Itoa(j)},
				"Stats":     &types.AttributeValueMemberM{Value: rowAttrs(t, r, p)},
				"UpdatedAt": &types.AttributeValueMemberN{Value: now},
			}
			reqs = append(reqs, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}
		if err := s.batchWriteWithRetry(ctx, reqs); err != nil {
			return fmt.Errorf("batch write %s rows: %w", k, err)
		}
	}

	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: seasonPK(k)},
			"SK": &types.AttributeValueMemberS{Value: manifestSK},
		},
		UpdateExpression: aws.String("SET CurrentRun=:r, RowCount=:n, #cols=:c, UpdatedAt=:now"),
		ExpressionAttributeNames: map[string]string{
			"#cols": "Columns",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r":   &types.AttributeValueMemberS{Value: s.RunID},
			":n":   &types.AttributeValueMemberN{Value: strconv.Itoa(len(t.Rows))},
			":c":   &types.AttributeValueMemberL{Value: columnAttrs(t)},
			":now": &types.AttributeValueMemberN{Value: now},
		},
	})
	if err != nil {
		return fmt.Errorf("flip manifest %s: %w", k, err)
	}
	return nil
}

// rowAttrs maps column name to value; missing metrics are NULL.
func rowAttrs(t *bbref.Table, r []bbref.Value, p int) map[string]types.AttributeValue {
	m := make(map[string]types.AttributeValue, len(t.Columns))
	for i, c := range t.Columns {
		if i == p {
			continue
		}
		v := r[i]
		switch {
		case c.Kind == bbref.KindMetric && v.Valid:
			m[c.Name] = &types.AttributeValueMemberN{Value: bbref.FormatNum(v.Num)}
		case c.Kind == bbref.KindMetric, v.Text == "":
			m[c.Name] = &types.AttributeValueMemberNULL{Value: true}
		default:
			m[c.Name] = &types.AttributeValueMemberS{Value: v.Text}
		}
	}
	return m
}

func columnAttrs(t *bbref.Table) []types.AttributeValue {
	out := make([]types.AttributeValue, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = &types.AttributeValueMemberS{Value: c.Name}
	}
	return out
}

func (s *DynamoSink) batchWriteWithRetry(ctx context.Context, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.Table: reqs},
	}
	const maxAttempts = 6
	backoff := s.Backoff

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := s.Client.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 {
			return nil
		}
		input.RequestItems = out.UnprocessedItems
		time.Sleep(backoff)
		if backoff < 2*time.Second {
			backoff += s.Backoff
		}
	}
	return fmt.Errorf("unprocessed items remained after retries for table %s", s.Table)
}
