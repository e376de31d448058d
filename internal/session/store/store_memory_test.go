package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
}

func (s *MemoryStoreSuite) TestLoad() {
	ctx := context.Background()

	s.Run("empty store reports no credential", func() {
		_, err := s.store.Load(ctx)
		s.Require().ErrorIs(err, ErrNoCredential)
	})

	s.Run("returns the saved credential", func() {
		s.Require().NoError(s.store.Save(ctx, "tok-123"))
		credential, err := s.store.Load(ctx)
		s.Require().NoError(err)
		s.Equal("tok-123", credential)
	})

	s.Run("save replaces the previous credential", func() {
		s.Require().NoError(s.store.Save(ctx, "tok-1"))
		s.Require().NoError(s.store.Save(ctx, "tok-2"))
		credential, err := s.store.Load(ctx)
		s.Require().NoError(err)
		s.Equal("tok-2", credential)
	})
}

func (s *MemoryStoreSuite) TestClear() {
	ctx := context.Background()

	s.Run("clearing an empty store is a no-op", func() {
		s.NoError(s.store.Clear(ctx))
	})

	s.Run("clearing removes the credential", func() {
		s.Require().NoError(s.store.Save(ctx, "tok-123"))
		s.Require().NoError(s.store.Clear(ctx))
		_, err := s.store.Load(ctx)
		s.Require().ErrorIs(err, ErrNoCredential)
	})
}
