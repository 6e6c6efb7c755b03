package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/healthflow/roster/core/metrics"
	"github.com/healthflow/roster/infra/logger"
)

// InfluxSink writes solver progress to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so an unreachable database never
// blocks a solve.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordIteration writes one column generation iteration.
func (s *InfluxSink) RecordIteration(rec coremetrics.IterationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("colgen_iteration").
		AddTag("run_id", rec.RunID).
		AddTag("node", strconv.Itoa(rec.Node)).
		AddTag("component", "colgen").
		AddField("iteration", rec.Iteration).
		AddField("objective", round4(rec.Objective)).
		AddField("columns_added", rec.ColumnsAdded).
		AddField("pool_size", rec.PoolSize).
		AddField("lp_ms", round4(rec.LPDuration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordNode writes one processed branch node.
func (s *InfluxSink) RecordNode(rec coremetrics.NodeRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("branch_node").
		AddTag("run_id", rec.RunID).
		AddTag("pruned", strconv.FormatBool(rec.Pruned)).
		AddTag("integral", strconv.FormatBool(rec.Integral)).
		AddTag("component", "branch").
		AddField("node", rec.Node).
		AddField("depth", rec.Depth).
		AddField("bound", round4(rec.Bound)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSolve writes the outcome of a full run.
func (s *InfluxSink) RecordSolve(rec coremetrics.SolveRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solve_result").
		AddTag("run_id", rec.RunID).
		AddTag("feasible", strconv.FormatBool(rec.Feasible)).
		AddTag("optimal", strconv.FormatBool(rec.ProvenOptimal)).
		AddTag("component", "solver").
		AddField("objective", round4(rec.Objective)).
		AddField("iterations", rec.Iterations).
		AddField("nodes", rec.Nodes).
		AddField("columns", rec.Columns).
		AddField("duration_ms", round4(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round4(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return math.Round(f*10000) / 10000
}
