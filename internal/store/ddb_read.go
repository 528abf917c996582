package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type DynamoDBReadAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ErrSeasonNotStored is returned by LoadSeason when no run was published.
var ErrSeasonNotStored = errors.New("season not stored")

// LoadSeason reads back the published run of a season as wide records
// (header first), the same shape FileSink writes. Rows of older or
// unfinished runs are never visible.
func LoadSeason(ctx context.Context, ddb DynamoDBReadAPI, table string, k Key) ([][]string, error) {
	man, err := queryAll(ctx, ddb, table, seasonPK(k), manifestSK)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", k, err)
	}
	if len(man) == 0 || getStr(man[0], "CurrentRun") == "" {
		return nil, fmt.Errorf("%s: %w", k, ErrSeasonNotStored)
	}
	run := getStr(man[0], "CurrentRun")
	cols := getList(man[0], "Columns")

	items, err := queryAll(ctx, ddb, table, seasonPK(k)+"#"+run, "")
	if err != nil {
		return nil, fmt.Errorf("read rows %s: %w", k, err)
	}
	sort.SliceStable(items, func(i, j int) bool { return getNum(items[i], "Ord") < getNum(items[j], "Ord") })

	player := k.Category.Descriptor().PlayerColumn
	out := make([][]string, 0, len(items)+1)
	out = append(out, cols)
	for _, it := range items {
		stats := getMap(it, "Stats")
		rec := make([]string, len(cols))
		for i, c := range cols {
			if c == player {
				rec[i] = getStr(it, "SK")
				continue
			}
			rec[i] = attrText(stats[c])
		}
		out = append(out, rec)
	}
	return out, nil
}

// queryAll pages through one partition, optionally pinned to a sort key.
func queryAll(ctx context.Context, ddb DynamoDBReadAPI, table, pk, sk string) ([]map[string]types.AttributeValue, error) {
	cond := "#pk = :pk"
	names := map[string]string{"#pk": "PK"}
	vals := map[string]types.AttributeValue{":pk": &types.AttributeValueMemberS{Value: pk}}
	if sk != "" {
		cond += " AND #sk = :sk"
		names["#sk"] = "SK"
		vals[":sk"] = &types.AttributeValueMemberS{Value: sk}
	}

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		out, err := ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(table),
			KeyConditionExpression:    aws.String(cond),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: vals,
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}

// ---------- helpers (local to store) ----------

func getStr(m map[string]types.AttributeValue, key string) string {
	if v, ok := m[key]; ok {
		if s, ok2 := v.(*types.AttributeValueMemberS); ok2 {
			return s.Value
		}
	}
	return ""
}

func getNum(m map[string]types.AttributeValue, key string) int {
	if v, ok := m[key]; ok {
		switch t := v.(type) {
		case *types.AttributeValueMemberN:
			n, _ := strconv.Atoi(t.Value)
			return n
		case *types.AttributeValueMemberS:
			n, _ := strconv.Atoi(t.Value)
			return n
		}
	}
	return 0
}

func getMap(m map[string]types.AttributeValue, key string) map[string]types.AttributeValue {
	if v, ok := m[key].(*types.AttributeValueMemberM); ok {
		return v.Value
	}
	return nil
}

func getList(m map[string]types.AttributeValue, key string) []string {
	v, ok := m[key].(*types.AttributeValueMemberL)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(v.Value))
	for _, e := range v.Value {
		out = append(out, attrText(e))
	}
	return out
}

func attrText(v types.AttributeValue) string {
	switch t := v.(type) {
	case *types.AttributeValueMemberS:
		return t.Value
	case *types.AttributeValueMemberN:
		return t.Value
	}
	return ""
}
