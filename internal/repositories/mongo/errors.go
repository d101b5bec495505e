package mongo

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrIndexUnavailable marks a query failure caused by a missing index, as
// opposed to any other store failure. Callers branch on it with errors.Is.
var ErrIndexUnavailable = errors.New("index unavailable")

// Server error codes that mean "the plan this query asked for needs an index
// the server does not have". Index provisioning is asynchronous, so these are
// expected right after schema changes.
const (
	codeBadValue                = 2   // unknown hint
	codeNoQueryExecutionPlans   = 291 // hinted index rejected by the planner
	codeSortExceededMemoryLimit = 292 // unindexed sort over the in-memory cap
)

func classifyQueryErr(err error) error {
	if err == nil {
		return nil
	}
	if isIndexUnavailable(err) {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return err
}

func isIndexUnavailable(err error) bool {
	var ce mongo.CommandError
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case codeNoQueryExecutionPlans, codeSortExceededMemoryLimit:
		return true
	case codeBadValue:
		msg := strings.ToLower(ce.Message)
		return strings.Contains(msg, "hint") || strings.Contains(msg, "index")
	}
	return strings.Contains(strings.ToLower(ce.Message), "index")
}
