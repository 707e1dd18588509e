package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

func Test_GetConsistencyLevel_DefaultsToStrong(t *testing.T) {
	assert.Equal(t, ledger.StrongConsistency, ledger.GetConsistencyLevel(context.Background()))
}

func Test_GetConsistencyLevel_ReadsContextValue(t *testing.T) {
	ctx := ledger.WithEventualConsistency(context.Background())
	assert.Equal(t, ledger.EventualConsistency, ledger.GetConsistencyLevel(ctx))

	ctx = ledger.WithStrongConsistency(ctx)
	assert.Equal(t, ledger.StrongConsistency, ledger.GetConsistencyLevel(ctx), "Should let the innermost level win")
}

func Test_ConsistencyLevel_String(t *testing.T) {
	assert.Equal(t, "strong", ledger.StrongConsistency.String())
	assert.Equal(t, "eventual", ledger.EventualConsistency.String())
	assert.Equal(t, "unknown", ledger.ConsistencyLevel(99).String())
}
