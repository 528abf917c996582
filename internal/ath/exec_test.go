package ath

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/stretchr/testify/require"
)

type fakeAthena struct {
	states  []types.QueryExecutionState
	polls   int
	started []*athena.StartQueryExecutionInput
	reason  string
	count   string
	pages   [][]types.Row
	tokens  []string
}

func (f *fakeAthena) StartQueryExecution(_ context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.started = append(f.started, in)
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("q1")}, nil
}

func (f *fakeAthena) GetQueryExecution(_ context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	st := f.states[min(f.polls, len(f.states)-1)]
	f.polls++
	qe := &types.QueryExecution{
		QueryExecutionId: in.QueryExecutionId,
		Status:           &types.QueryExecutionStatus{State: st},
	}
	if f.reason != "" {
		qe.Status.StateChangeReason = aws.String(f.reason)
	}
	return &athena.GetQueryExecutionOutput{QueryExecution: qe}, nil
}

func (f *fakeAthena) GetQueryResults(_ context.Context, in *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	if len(f.pages) > 0 {
		f.tokens = append(f.tokens, aws.ToString(in.NextToken))
		page := len(f.tokens) - 1
		out := &athena.GetQueryResultsOutput{ResultSet: &types.ResultSet{Rows: f.pages[page]}}
		if page+1 < len(f.pages) {
			out.NextToken = aws.String(fmt.Sprintf("t%d", page+1))
		}
		return out, nil
	}
	return &athena.GetQueryResultsOutput{ResultSet: &types.ResultSet{Rows: []types.Row{
		{Data: []types.Datum{{VarCharValue: aws.String("c")}}},
		{Data: []types.Datum{{VarCharValue: aws.String(f.count)}}},
	}}}, nil
}

func runner(f *fakeAthena) *Runner {
	return &Runner{Client: f, Database: "bbref", Workgroup: "primary", Poll: time.Millisecond}
}

func TestExecAndWait_PollsUntilDone(t *testing.T) {
	f := &fakeAthena{states: []types.QueryExecutionState{
		types.QueryExecutionStateQueued,
		types.QueryExecutionStateRunning,
		types.QueryExecutionStateSucceeded,
	}}
	qe, err := runner(f).ExecAndWait(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Equal(t, "q1", aws.ToString(qe.QueryExecutionId))
	require.Equal(t, 3, f.polls)

	in := f.started[0]
	require.Equal(t, "bbref", aws.ToString(in.QueryExecutionContext.Database))
	require.Equal(t, "primary", aws.ToString(in.WorkGroup))
	require.Nil(t, in.ResultConfiguration)
}

func TestExecAndWait_Failed(t *testing.T) {
	f := &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateFailed}, reason: "SYNTAX_ERROR"}
	_, err := runner(f).ExecAndWait(context.Background(), "SELEC 1")
	require.ErrorContains(t, err, "SYNTAX_ERROR")
}

func TestExecAndWait_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateRunning}}
	r := runner(f)
	r.Poll = time.Hour
	_, err := r.ExecAndWait(ctx, "SELECT 1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCountRows(t *testing.T) {
	f := &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateSucceeded}, count: "412"}
	r := runner(f)
	r.OutputS3 = "s3://out/"
	n, err := r.CountRows(context.Background(), "bbref.player_totals", "season = 1998")
	require.NoError(t, err)
	require.EqualValues(t, 412, n)
	require.Equal(t, "SELECT COUNT(*) AS c FROM bbref.player_totals WHERE season = 1998", aws.ToString(f.started[0].QueryString))
	require.Equal(t, "s3://out/", aws.ToString(f.started[0].ResultConfiguration.OutputLocation))
}

func vrow(vals ...string) types.Row {
	r := types.Row{}
	for _, v := range vals {
		r.Data = append(r.Data, types.Datum{VarCharValue: aws.String(v)})
	}
	return r
}

func TestQuery_FollowsNextToken(t *testing.T) {
	f := &fakeAthena{
		states: []types.QueryExecutionState{types.QueryExecutionStateSucceeded},
		pages: [][]types.Row{
			{vrow("season", "value"), vrow("1996", "2491")},
			{vrow("1997", "2431"), {Data: []types.Datum{{VarCharValue: aws.String("1998")}, {}}}},
		},
	}
	rows, err := runner(f).Query(context.Background(), "SELECT season, value FROM t")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"season", "value"},
		{"1996", "2491"},
		{"1997", "2431"},
		{"1998", ""},
	}, rows)
	require.Equal(t, []string{"", "t1"}, f.tokens)
}

func TestCountRows_BadShape(t *testing.T) {
	f := &fakeAthena{
		states: []types.QueryExecutionState{types.QueryExecutionStateSucceeded},
		pages:  [][]types.Row{{vrow("c")}},
	}
	_, err := runner(f).CountRows(context.Background(), "t", "")
	require.ErrorContains(t, err, "unexpected COUNT(*) result shape")
}
