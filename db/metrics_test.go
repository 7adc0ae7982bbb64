package db

import (
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sksmith/fulfilment/core"
)

func TestMetricComplete(t *testing.T) {
	tests := []struct {
		name string
		repo string
		err  error

		wantOutcome string
	}{
		{name: "success", repo: "metrics-ok", wantOutcome: outcomeOK},
		{name: "no rows", repo: "metrics-no-rows", err: pgx.ErrNoRows, wantOutcome: outcomeNotFound},
		{name: "wrapped not found", repo: "metrics-not-found", err: errors.WithStack(core.ErrNotFound), wantOutcome: outcomeNotFound},
		{name: "failure", repo: "metrics-failure", err: errors.New("some unexpected error"), wantOutcome: outcomeError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			NewMetrics(test.repo).Start("GetThing").Complete(test.err)

			for _, o := range []string{outcomeOK, outcomeNotFound, outcomeError} {
				want := 0.0
				if o == test.wantOutcome {
					want = 1
				}
				got := testutil.ToFloat64(dbRequests.WithLabelValues(test.repo, "GetThing", o))
				if got != want {
					t.Errorf("unexpected %s count got=%v want=%v", o, got, want)
				}
			}
		})
	}
}
