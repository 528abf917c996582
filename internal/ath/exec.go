package ath

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

type Runner struct {
	Client    AthenaAPI
	Workgroup string
	Database  string
	OutputS3  string // s3://bucket/prefix/, optional when the workgroup sets one
	Logger    *slog.Logger
	// Poll is the status polling interval; 1s when zero.
	Poll time.Duration
}

func (r *Runner) ExecAndWait(ctx context.Context, sql string) (*types.QueryExecution, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(r.Database),
		},
	}
	if r.Workgroup != "" {
		in.WorkGroup = aws.String(r.Workgroup)
	}
	if r.OutputS3 != "" {
		in.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(r.OutputS3)}
	}
	startOut, err := r.Client.StartQueryExecution(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("start query: %w", err)
	}
	qid := aws.ToString(startOut.QueryExecutionId)
	if r.Logger != nil {
		r.Logger.Debug("athena query started", "qid", qid)
	}

	poll := r.Poll
	if poll <= 0 {
		poll = time.Second
	}
	tick := time.NewTicker(poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick.C:
			ge, err := r.Client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
				QueryExecutionId: aws.String(qid),
			})
			if err != nil {
				return nil, fmt.Errorf("get query execution: %w", err)
			}
			switch ge.QueryExecution.Status.State {
			case types.QueryExecutionStateSucceeded:
				if r.Logger != nil && ge.QueryExecution.Statistics != nil {
					stats := ge.QueryExecution.Statistics
					r.Logger.Info("athena query succeeded",
						"qid", qid,
						"scanned_mb", float64(aws.ToInt64(stats.DataScannedInBytes))/1024.0/1024.0,
						"exec_ms", aws.ToInt64(stats.EngineExecutionTimeInMillis),
					)
				}
				return ge.QueryExecution, nil
			case types.QueryExecutionStateFailed:
				msg := "unknown error"
				if ae := ge.QueryExecution.Status.AthenaError; ae != nil && ae.ErrorMessage != nil {
					msg = aws.ToString(ae.ErrorMessage)
				} else if ge.QueryExecution.Status.StateChangeReason != nil {
					msg = aws.ToString(ge.QueryExecution.Status.StateChangeReason)
				}
				return nil, errors.New("athena failed: " + msg)
			case types.QueryExecutionStateCancelled:
				return nil, errors.New("athena cancelled")
			default:
				// still running
			}
		}
	}
}

// Query runs sql and returns every result row, header row first.
func (r *Runner) Query(ctx context.Context, sql string) ([][]string, error) {
	exec, err := r.ExecAndWait(ctx, sql)
	if err != nil {
		return nil, err
	}
	var out [][]string
	var next *string
	for {
		gr, err := r.Client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: exec.QueryExecutionId,
			NextToken:        next,
		})
		if err != nil {
			return nil, fmt.Errorf("get results: %w", err)
		}
		if gr.ResultSet != nil {
			for _, row := range gr.ResultSet.Rows {
				rec := make([]string, len(row.Data))
				for i, d := range row.Data {
					rec[i] = aws.ToString(d.VarCharValue)
				}
				out = append(out, rec)
			}
		}
		if aws.ToString(gr.NextToken) == "" {
			return out, nil
		}
		next = gr.NextToken
	}
}

// CountRows returns COUNT(*) of table, optionally filtered by where.
func (r *Runner) CountRows(ctx context.Context, table, where string) (int64, error) {
	sql := fmt.Sprintf("SELECT COUNT(*) AS c FROM %s", table)
	if where != "" {
		sql += " WHERE " + where
	}
	rows, err := r.Query(ctx, sql)
	if err != nil {
		return 0, err
	}
	// row 0 is the header
	if len(rows) < 2 || len(rows[1]) < 1 || rows[1][0] == "" {
		return 0, errors.New("unexpected COUNT(*) result shape")
	}
	var n int64
	if _, err := fmt.Sscan(rows[1][0], &n); err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return n, nil
}
