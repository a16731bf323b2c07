package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type AssetDirectory struct {
	mock.Mock
}

func (_m *AssetDirectory) Exists(ctx context.Context, assetID uuid.UUID) (bool, error) {
	ret := _m.Called(ctx, assetID)
	return ret.Bool(0), ret.Error(1)
}

func NewAssetDirectory(t testingT) *AssetDirectory {
	m := &AssetDirectory{}
	register(&m.Mock, t)
	return m
}
