package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveQuery("root", 5*time.Millisecond, nil)
	m.ObserveQuery("root", time.Millisecond, nil)
	m.ObserveQuery("relation", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, promtest.ToFloat64(m.Queries.WithLabelValues("root", StatusOK)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Queries.WithLabelValues("relation", StatusError)))
	assert.Equal(t, 2, promtest.CollectAndCount(m.QueryDuration))
}

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("User", "OK")
	m.ObserveRequest("User", "FILTER_SYNTAX")
	m.ObserveRequest("User", "OK")

	assert.Equal(t, 2.0, promtest.ToFloat64(m.Searches.WithLabelValues("User", "OK")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Searches.WithLabelValues("User", "FILTER_SYNTAX")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveQuery("root", time.Millisecond, nil)
	m.ObserveRequest("User", "OK")
}

func TestWrite(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRequest("Role", "OK")

	var sb strings.Builder
	require.NoError(t, Write(&sb, reg))
	assert.Contains(t, sb.String(), `fieldquery_searches_total{code="OK",entity="Role"} 1`)
}
