package mongo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassifyQueryErrNil(t *testing.T) {
	assert.NoError(t, classifyQueryErr(nil))
}

func TestClassifyQueryErrIndexCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "no query execution plans",
			err:  mongo.CommandError{Code: 291, Name: "NoQueryExecutionPlans", Message: "error processing query: no query solutions"},
			want: true,
		},
		{
			name: "sort exceeded memory limit",
			err:  mongo.CommandError{Code: 292, Name: "QueryExceededMemoryLimitNoDiskUseAllowed", Message: "Sort exceeded memory limit"},
			want: true,
		},
		{
			name: "bad hint",
			err:  mongo.CommandError{Code: 2, Name: "BadValue", Message: "hint provided does not correspond to an existing index"},
			want: true,
		},
		{
			name: "bad value unrelated to indexes",
			err:  mongo.CommandError{Code: 2, Name: "BadValue", Message: "unknown top level operator: $foo"},
			want: false,
		},
		{
			name: "other code mentioning index",
			err:  mongo.CommandError{Code: 17007, Name: "Location17007", Message: "no index found for $geoNear query"},
			want: true,
		},
		{
			name: "interrupted operation",
			err:  mongo.CommandError{Code: 11601, Name: "Interrupted", Message: "operation was interrupted"},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyQueryErr(tc.err)
			require.Error(t, got)
			assert.Equal(t, tc.want, errors.Is(got, ErrIndexUnavailable))
		})
	}
}

func TestClassifyQueryErrWrappedCommandError(t *testing.T) {
	inner := mongo.CommandError{Code: 291, Name: "NoQueryExecutionPlans", Message: "no query solutions"}
	got := classifyQueryErr(fmt.Errorf("find interviews: %w", inner))
	assert.True(t, errors.Is(got, ErrIndexUnavailable))
}

func TestClassifyQueryErrPassthrough(t *testing.T) {
	plain := errors.New("connection reset by peer")
	got := classifyQueryErr(plain)
	assert.Same(t, plain, got)
	assert.False(t, errors.Is(got, ErrIndexUnavailable))
}
