package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

func janeInput() CaptureLeadInput {
	return CaptureLeadInput{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       " JANE@Example.com ",
		Phone:       "6045551234",
		BuyerType:   "investor",
		LeadSource:  "google",
		UTMSource:   "google",
		UTMCampaign: " presale-q3 ",
		LandingPage: "/book",
	}
}

func TestCaptureLeadPersistsNormalizedRowAndForwards(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	repo := new(MockLeadRepository)
	fwd := new(MockForwarder)

	var saved *entity.Lead
	repo.On("Create", ctx, mock.MatchedBy(func(l *entity.Lead) bool {
		saved = l
		return true
	})).Return(nil)
	fwd.On("Forward", mock.Anything, mock.MatchedBy(func(p entity.ForwardedLead) bool {
		return p.Source == "presale-site" && p.Event == entity.EventLeadCreated
	})).Return(nil)

	uc := NewCaptureLeadUseCase(repo, fwd, nil, "presale-site", nil)
	out, err := uc.Execute(ctx, janeInput())
	uc.Wait()

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.NotEmpty(t, out.LeadID)

	require.NotNil(t, saved)
	assert.Equal(t, out.LeadID, saved.ID)
	assert.Equal(t, "jane@example.com", saved.Email)
	assert.Equal(t, "6045551234", saved.Phone)
	assert.Equal(t, entity.StatusNew, saved.Status)
	assert.False(t, saved.IsPaid)
	assert.Equal(t, "presale-q3", *saved.UTMCampaign)
	assert.Nil(t, saved.UTMMedium)
	assert.Nil(t, saved.Timeline)

	fwd.AssertNumberOfCalls(t, "Forward", 1)
	payload := fwd.Calls[0].Arguments.Get(1).(entity.ForwardedLead)
	assert.Equal(t, out.LeadID, payload.LeadID)
	assert.Equal(t, "lead:"+out.LeadID, payload.IdempotencyKey)
	assert.Equal(t, "jane@example.com", payload.Email)
}

func TestCaptureLeadMissingFieldsRejected(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	fwd := new(MockForwarder)

	input := janeInput()
	input.Phone = "  "

	uc := NewCaptureLeadUseCase(repo, fwd, nil, "presale-site", nil)
	out, err := uc.Execute(ctx, input)
	uc.Wait()

	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, IsDomainError(err))
	assert.Equal(t, CodeValidation, ErrorCode(err))
	assert.Equal(t, "Missing required fields", err.Error())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	fwd.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
}

func TestCaptureLeadUnknownEnumRejected(t *testing.T) {
	repo := new(MockLeadRepository)
	input := janeInput()
	input.LeadSource = "billboard"

	_, err := NewCaptureLeadUseCase(repo, nil, nil, "", nil).Execute(context.Background(), input)

	assert.True(t, IsDomainError(err))
	assert.Equal(t, "Invalid field values", err.Error())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCaptureLeadPersistenceFailureSkipsForwarding(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	repo := new(MockLeadRepository)
	fwd := new(MockForwarder)
	mail := new(MockEmailService)
	repo.On("Create", ctx, mock.Anything).Return(errors.New("connection refused"))

	uc := NewCaptureLeadUseCase(repo, fwd, mail, "presale-site", nil)
	out, err := uc.Execute(ctx, janeInput())
	uc.Wait()

	assert.Nil(t, out)
	assert.True(t, IsTechnicalError(err))
	assert.Equal(t, CodeDatabase, ErrorCode(err))
	fwd.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
	mail.AssertNotCalled(t, "SendLeadConfirmation", mock.Anything)
}

func TestCaptureLeadForwardFailureStillSucceeds(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	core, logs := observer.New(zapcore.WarnLevel)
	repo := new(MockLeadRepository)
	fwd := new(MockForwarder)
	repo.On("Create", ctx, mock.Anything).Return(nil)
	fwd.On("Forward", mock.Anything, mock.Anything).Return(errors.New("webhook 503"))

	uc := NewCaptureLeadUseCase(repo, fwd, nil, "presale-site", zap.New(core))
	out, err := uc.Execute(ctx, janeInput())
	uc.Wait()

	require.NoError(t, err)
	assert.NotEmpty(t, out.LeadID)
	fwd.AssertNumberOfCalls(t, "Forward", 1)

	entries := logs.FilterMessage("lead forward failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, out.LeadID, entries[0].ContextMap()["lead_id"])
}

func TestCaptureLeadForwardOutlivesRequestContext(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())

	repo := new(MockLeadRepository)
	fwd := new(MockForwarder)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	fwd.On("Forward", mock.MatchedBy(func(c context.Context) bool {
		return c.Err() == nil
	}), mock.Anything).Return(nil)

	uc := NewCaptureLeadUseCase(repo, fwd, nil, "presale-site", nil)
	_, err := uc.Execute(ctx, janeInput())
	cancel()
	uc.Wait()

	require.NoError(t, err)
	fwd.AssertNumberOfCalls(t, "Forward", 1)
}

func TestCaptureLeadWithoutForwarder(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	uc := NewCaptureLeadUseCase(repo, nil, nil, "presale-site", nil)
	out, err := uc.Execute(ctx, janeInput())
	uc.Wait()

	require.NoError(t, err)
	assert.NotEmpty(t, out.LeadID)
}

func TestCaptureLeadSendsEmails(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	mail := new(MockEmailService)
	repo.On("Create", ctx, mock.Anything).Return(nil)
	mail.On("SendLeadConfirmation", mock.Anything).Return(errors.New("smtp down"))
	mail.On("SendOperatorAlert", mock.Anything).Return(nil)

	uc := NewCaptureLeadUseCase(repo, nil, mail, "presale-site", nil)
	_, err := uc.Execute(ctx, janeInput())
	uc.Wait()

	require.NoError(t, err)
	mail.AssertCalled(t, "SendLeadConfirmation", mock.Anything)
	mail.AssertCalled(t, "SendOperatorAlert", mock.Anything)
}

func TestCaptureLeadRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	fwd := new(MockForwarder)
	repo.On("Create", ctx, mock.Anything).Return(nil)
	fwd.On("Forward", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	metrics := &recordingMetrics{}

	uc := NewCaptureLeadUseCase(repo, fwd, nil, "presale-site", nil)
	uc.Metrics = metrics
	_, err := uc.Execute(ctx, janeInput())
	uc.Wait()

	require.NoError(t, err)
	assert.Equal(t, []string{"google"}, metrics.captured)
	assert.Equal(t, []string{"lead_forward"}, metrics.errors)
}

func TestCaptureLeadRejectsOverlongFields(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*CaptureLeadInput)
	}{
		{"first name", func(in *CaptureLeadInput) { in.FirstName = strings.Repeat("a", 81) }},
		{"message", func(in *CaptureLeadInput) { in.Message = strings.Repeat("m", 2001) }},
		{"campaign", func(in *CaptureLeadInput) { in.UTMCampaign = strings.Repeat("c", 257) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLeadRepository)
			input := janeInput()
			tt.apply(&input)

			_, err := NewCaptureLeadUseCase(repo, nil, nil, "presale-site", nil).Execute(context.Background(), input)

			require.Error(t, err)
			assert.Equal(t, CodeValidation, ErrorCode(err))
			assert.Equal(t, "Invalid field values", err.Error())
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCaptureLeadAcceptsFieldsAtLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	input := janeInput()
	input.FirstName = strings.Repeat("é", 80)
	input.Message = strings.Repeat("m", 2000)

	uc := NewCaptureLeadUseCase(repo, nil, nil, "presale-site", nil)
	_, err := uc.Execute(ctx, input)
	uc.Wait()

	assert.NoError(t, err)
}
