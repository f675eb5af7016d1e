package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"docverify/internal/verification/metrics"
	"docverify/internal/verification/models"
	"docverify/internal/verification/ports/mocks"
	"docverify/internal/verification/store/memory"
	id "docverify/pkg/domain"
	"docverify/pkg/requestcontext"
)

type LoggerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	history  *mocks.MockHistoryStore
	reporter *mocks.MockErrorReporter
	logger   *Logger
	now      time.Time
	ctx      context.Context
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.history = mocks.NewMockHistoryStore(s.ctrl)
	s.reporter = mocks.NewMockErrorReporter(s.ctrl)
	s.now = time.Date(2026, 7, 7, 7, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	var err error
	s.logger, err = New(s.history,
		WithErrorReporter(s.reporter),
		WithMetrics(metrics.NewWithRegistry(prometheus.NewRegistry())),
	)
	s.Require().NoError(err)
}

func (s *LoggerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *LoggerSuite) TestLogStampsEntry() {
	sessionID := id.NewSessionID()
	entry := &models.HistoryEntry{VerificationMethod: models.MethodManualEntry, SessionID: &sessionID}

	s.history.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e *models.HistoryEntry) error {
			s.NotEqual(id.HistoryID{}, e.ID)
			s.Equal(s.now, e.CreatedAt)
			return nil
		})

	s.logger.Log(s.ctx, entry)
}

func (s *LoggerSuite) TestAppendFailureIsReportedNotReturned() {
	boom := errors.New("disk full")
	s.history.EXPECT().Append(gomock.Any(), gomock.Any()).Return(boom)
	s.reporter.EXPECT().Report(gomock.Any(), boom, gomock.Any()).AnyTimes()

	s.logger.Log(s.ctx, &models.HistoryEntry{VerificationMethod: models.MethodQRScan})
}

func TestLogLeavesSessionCounterAlone(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	sess := &models.VerificationSession{SessionID: id.NewSessionID(), Status: models.SessionActive}
	require.NoError(t, sessions.Create(ctx, sess))

	logger, err := New(memory.NewHistoryStore())
	require.NoError(t, err)
	for range 3 {
		logger.Log(ctx, &models.HistoryEntry{SessionID: &sess.SessionID, ErrorCode: models.ErrorRateLimitExceeded})
	}

	got, err := sessions.Get(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentVerifications)
}

func TestRecentForRecord(t *testing.T) {
	store := memory.NewHistoryStore()
	logger, err := New(store)
	require.NoError(t, err)

	ctx := context.Background()
	recordID := id.NewRecordID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		logger.Log(ctx, &models.HistoryEntry{
			VerificationRecordID: &recordID,
			VerificationMethod:   models.MethodManualEntry,
			IsSuccessful:         i%2 == 0,
			CreatedAt:            base.Add(time.Duration(i) * time.Hour),
		})
	}

	views, err := logger.RecentForRecord(ctx, recordID, 3)
	require.NoError(t, err)
	assert.Len(t, views, 3)
	assert.Equal(t, base.Add(4*time.Hour), views[0].CreatedAt)
	assert.True(t, views[0].IsSuccessful)
}
