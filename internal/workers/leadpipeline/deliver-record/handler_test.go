package deliverrecord

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/models"
)

type fakeRepo struct {
	inserted map[string]models.NormalizedLeadRecord
	err      error
}

func (f *fakeRepo) Insert(_ context.Context, correlationID string, record models.NormalizedLeadRecord) error {
	if f.err != nil {
		return f.err
	}
	f.inserted[correlationID] = record
	return nil
}

type fakeCRM struct {
	upserts []models.NormalizedLeadRecord
	err     error
}

func (f *fakeCRM) UpsertFromRecord(_ context.Context, record models.NormalizedLeadRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.upserts = append(f.upserts, record)
	return "z1", nil
}

type fakeSearch struct {
	indexed []string
	err     error
}

func (f *fakeSearch) IndexRecord(_ context.Context, correlationID string, _ models.NormalizedLeadRecord) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, correlationID)
	return nil
}

type fakeNotifier struct {
	alerts []string
	err    error
}

func (f *fakeNotifier) SpamAlert(_ context.Context, correlationID string, _ models.NormalizedLeadRecord) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, correlationID)
	return nil
}

type fixture struct {
	repo     *fakeRepo
	crm      *fakeCRM
	search   *fakeSearch
	notifier *fakeNotifier
	handler  *Handler
}

func newFixture() *fixture {
	f := &fixture{
		repo:     &fakeRepo{inserted: map[string]models.NormalizedLeadRecord{}},
		crm:      &fakeCRM{},
		search:   &fakeSearch{},
		notifier: &fakeNotifier{},
	}
	f.handler = NewHandler(LoadConfig(), f.repo, f.crm, f.search, f.notifier, logger.NewTestLogger())
	return f
}

func newLead() *Input {
	return &Input{
		CorrelationID: "gw_abc",
		Record: models.NormalizedLeadRecord{
			Name:         "Jane Doe",
			EmailAddress: "jane@x.com",
			Status:       "New Lead",
		},
	}
}

func spamLead() *Input {
	input := newLead()
	input.Record.Status = "Possible Spam"
	return input
}

func TestExecute_NewLeadGoesToCRMAndIndex(t *testing.T) {
	f := newFixture()

	output, err := f.handler.Execute(context.Background(), newLead())

	require.NoError(t, err)
	assert.True(t, output.Stored)
	assert.Equal(t, "z1", output.CRMContactID)
	assert.True(t, output.Indexed)
	assert.False(t, output.SpamAlerted)
	assert.Contains(t, f.repo.inserted, "gw_abc")
	assert.Len(t, f.crm.upserts, 1)
	assert.Equal(t, []string{"gw_abc"}, f.search.indexed)
	assert.Empty(t, f.notifier.alerts)
}

func TestExecute_SpamSkipsCRMAndAlerts(t *testing.T) {
	f := newFixture()

	output, err := f.handler.Execute(context.Background(), spamLead())

	require.NoError(t, err)
	assert.True(t, output.Stored)
	assert.Empty(t, output.CRMContactID)
	assert.True(t, output.SpamAlerted)
	assert.Empty(t, f.crm.upserts, "spam never reaches the CRM")
	assert.Equal(t, []string{"gw_abc"}, f.notifier.alerts)
}

func TestExecute_InsertFailureFailsJob(t *testing.T) {
	f := newFixture()
	f.repo.err = commonerrors.NewRecordInsertFailedError(errors.New("db down"))

	_, err := f.handler.Execute(context.Background(), newLead())
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeRecordInsertFailed, stdErr.Code)
	assert.Empty(t, f.crm.upserts, "no fan-out without the system of record")
	assert.Empty(t, f.search.indexed)
}

func TestExecute_CRMFailureFailsJob(t *testing.T) {
	f := newFixture()
	f.crm.err = commonerrors.NewCRMSyncFailedError(errors.New("zoho 500"))

	_, err := f.handler.Execute(context.Background(), newLead())
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeCRMSyncFailed, stdErr.Code)
}

func TestExecute_IndexFailureIsWarnOnly(t *testing.T) {
	f := newFixture()
	f.search.err = commonerrors.NewIndexWriteFailedError(errors.New("es down"))

	output, err := f.handler.Execute(context.Background(), newLead())

	require.NoError(t, err)
	assert.True(t, output.Stored)
	assert.False(t, output.Indexed)
	assert.Equal(t, "z1", output.CRMContactID, "CRM sync unaffected")
}

func TestExecute_SpamAlertFailureIsWarnOnly(t *testing.T) {
	f := newFixture()
	f.notifier.err = commonerrors.NewNotificationSendFailedError(errors.New("ses throttled"))

	output, err := f.handler.Execute(context.Background(), spamLead())

	require.NoError(t, err)
	assert.True(t, output.Stored)
	assert.False(t, output.SpamAlerted)
}

func TestExecute_DisabledSinks(t *testing.T) {
	f := newFixture()
	f.handler.config.CRMEnabled = false
	f.handler.config.IndexEnabled = false

	output, err := f.handler.Execute(context.Background(), newLead())

	require.NoError(t, err)
	assert.True(t, output.Stored)
	assert.Empty(t, output.CRMContactID)
	assert.False(t, output.Indexed)
	assert.Empty(t, f.crm.upserts)
	assert.Empty(t, f.search.indexed)
}
