package listbooks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/features/query/listbooks"
	"github.com/AntonStoeckl/library-loans-go/testutil/memledger"
)

func Test_QueryHandler_Handle_NewestFirst(t *testing.T) {
	// arrange
	store := memledger.New()
	first := store.AddBook("1984", 3, 3)
	second := store.AddBook("Dune", 1, 0)

	// act
	result, err := listbooks.NewQueryHandler(store).Handle(context.Background(), listbooks.BuildQuery())

	// assert
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	assert.Equal(t, second.ID, result.Books[0].ID, "Should order by id descending")
	assert.Equal(t, first.ID, result.Books[1].ID)
	assert.Equal(t, ledger.EventualConsistency, store.LastConsistency(), "Should allow replica reads")
}

func Test_QueryHandler_Handle_Empty(t *testing.T) {
	result, err := listbooks.NewQueryHandler(memledger.New()).Handle(context.Background(), listbooks.BuildQuery())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Books)
}

func Test_QueryHandler_Handle_Error(t *testing.T) {
	store := memledger.New()
	store.FailNext(ledger.ErrQueryingFailed)

	_, err := listbooks.NewQueryHandler(store).Handle(context.Background(), listbooks.BuildQuery())

	assert.True(t, errors.Is(err, ledger.ErrQueryingFailed), "Should pass the store error through")
}
