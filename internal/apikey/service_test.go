package apikey

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"docverify/internal/verification/models"
	"docverify/internal/verification/store/memory"
	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *memory.APIKeyStore
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.NewAPIKeyStore()
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	var err error
	s.service, err = New(s.store, WithBcryptCost(bcrypt.MinCost))
	s.Require().NoError(err)
}

func (s *ServiceSuite) issue(limit int64) (string, string) {
	issued, err := s.service.Issue(s.ctx, "acme bank", limit)
	s.Require().NoError(err)
	keyID, secret, err := ParseToken(issued.Token)
	s.Require().NoError(err)
	return keyID, secret
}

func (s *ServiceSuite) TestIssue() {
	issued, err := s.service.Issue(s.ctx, "  acme bank ", 5)
	s.Require().NoError(err)
	s.Equal("acme bank", issued.Name)
	s.Equal(int64(5), issued.MonthlyLimit)
	s.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), issued.PeriodEnd)

	keyID, secret, err := ParseToken(issued.Token)
	s.Require().NoError(err)
	s.Equal(issued.ID, keyID)

	parsed, err := id.ParseAPIKeyID(keyID)
	s.Require().NoError(err)
	stored, err := s.store.Get(s.ctx, parsed)
	s.Require().NoError(err)
	s.NotContains(stored.SecretHash, secret, "only the hash is stored")
}

func (s *ServiceSuite) TestIssueValidation() {
	_, err := s.service.Issue(s.ctx, " ", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = s.service.Issue(s.ctx, "x", -1)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	issued, err := s.service.Issue(s.ctx, "default", 0)
	s.Require().NoError(err)
	s.Equal(int64(10000), issued.MonthlyLimit)
}

func (s *ServiceSuite) TestAuthenticate() {
	keyID, secret := s.issue(3)

	key, err := s.service.Authenticate(s.ctx, keyID, secret)
	s.Require().NoError(err)
	s.Equal(keyID, key.ID.String())

	_, err = s.service.Authenticate(s.ctx, keyID, secret+"x")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.Authenticate(s.ctx, id.NewAPIKeyID().String(), secret)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.Authenticate(s.ctx, "garbage", secret)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestAccessConsumesQuota() {
	keyID, secret := s.issue(2)

	for i := int64(1); i <= 2; i++ {
		key, err := s.service.Access(s.ctx, keyID, secret)
		s.Require().NoError(err)
		s.Equal(i, key.CurrentUsage)
	}

	_, err := s.service.Access(s.ctx, keyID, secret)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))

	nextMonth := requestcontext.WithTime(context.Background(), time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	key, err := s.service.Access(nextMonth, keyID, secret)
	s.Require().NoError(err)
	s.Equal(int64(1), key.CurrentUsage)
}

func (s *ServiceSuite) TestAccessInactiveKey() {
	hash, err := hashSecret("s3cret", bcrypt.MinCost)
	s.Require().NoError(err)
	key := &models.APIKey{ID: id.NewAPIKeyID(), Name: "old", SecretHash: hash, MonthlyLimit: 10}
	s.Require().NoError(s.store.Create(s.ctx, key))

	_, err = s.service.Access(s.ctx, key.ID.String(), "s3cret")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestParseToken(t *testing.T) {
	keyID, secret, err := ParseToken(" abc.def.ghi ")
	require.NoError(t, err)
	assert.Equal(t, "abc", keyID)
	assert.Equal(t, "def.ghi", secret)

	for _, bad := range []string{"", "nodot", ".secret", "id."} {
		_, _, err := ParseToken(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), bad)
	}
}
