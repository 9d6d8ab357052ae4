package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/price-catalog/internal/application/usecase"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
)

type countingFeed struct{ got int }

func (f *countingFeed) Build(products []*entity.Product, _ time.Time) ([]byte, error) {
	f.got = len(products)
	return []byte("<yml_catalog/>"), nil
}

func TestFeedUseCase(t *testing.T) {
	builder := &countingFeed{}
	out, err := usecase.NewFeedUseCase(catalogRepo(), builder).Feed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<yml_catalog/>", string(out))
	assert.Equal(t, 4, builder.got)

	repo := catalogRepo()
	repo.err = errors.New("db caída")
	_, err = usecase.NewFeedUseCase(repo, builder).Feed(context.Background())
	assert.Error(t, err)
}
