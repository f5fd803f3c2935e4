package mail

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type senderStub struct {
	mu     sync.Mutex
	sent   []*sgmail.SGMailV3
	status int
}

func (s *senderStub) SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	status := s.status
	if status == 0 {
		status = http.StatusAccepted
	}
	return &rest.Response{StatusCode: status}, nil
}

type mailRepoStub struct {
	mu   sync.Mutex
	rows []entity.SendEmailRequest
}

func (m *mailRepoStub) AddMail(ctx context.Context, ser *entity.SendEmailRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := *ser
	r.Id = len(m.rows) + 1
	m.rows = append(m.rows, r)
	return r.Id, nil
}

func (m *mailRepoStub) GetAllUnsent(ctx context.Context, withError bool) ([]entity.SendEmailRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.SendEmailRequest{}
	for _, r := range m.rows {
		if r.Sent {
			continue
		}
		if !withError && r.ErrMsg.Valid {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mailRepoStub) UpdateSent(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].Id == id {
			m.rows[i].Sent = true
		}
	}
	return nil
}

func (m *mailRepoStub) AddError(ctx context.Context, id int, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].Id == id {
			m.rows[i].ErrMsg.String = errMsg
			m.rows[i].ErrMsg.Valid = true
		}
	}
	return nil
}

type repoStub struct {
	dependency.Repository
	mail dependency.Mail
}

func (r *repoStub) Mail() dependency.Mail { return r.mail }

func testMailer(t *testing.T, mailRepo dependency.Mail) (*Mailer, *senderStub) {
	t.Helper()
	m, err := newMailer(&Config{
		APIKey:         "test-key",
		FromEmail:      "noreply@softkom.example",
		FromName:       "SoftKom",
		WorkerInterval: 10 * time.Millisecond,
	}, mailRepo)
	require.NoError(t, err)
	stub := &senderStub{}
	m.cli = stub
	return m, stub
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	_, err := New(&Config{FromEmail: "a@b.c"}, &mailRepoStub{})
	assert.Error(t, err)
}

func TestBuildSendEmailRequest(t *testing.T) {
	m, _ := testMailer(t, &mailRepoStub{})

	ser, err := m.buildSendEmailRequest("to@example.com", OrderReceived, struct {
		SolutionTitle string
		Reference     string
	}{SolutionTitle: "Учёт ГСМ", Reference: "ref-123"})
	require.NoError(t, err)

	assert.Equal(t, "to@example.com", ser.To)
	assert.Equal(t, templateSubjects[OrderReceived], ser.Subject)
	assert.Contains(t, ser.Html, "Учёт ГСМ")
	assert.Contains(t, ser.Html, "ref-123")
	assert.Contains(t, ser.From, "noreply@softkom.example")

	_, err = m.buildSendEmailRequest("to@example.com", "missing.gohtml", nil)
	assert.Error(t, err)
}

func TestSendWithInsertMarksSent(t *testing.T) {
	mailRepo := &mailRepoStub{}
	m, stub := testMailer(t, mailRepo)
	rep := &repoStub{mail: mailRepo}

	err := m.SendNewSubscriber(context.Background(), rep, "sub@example.com")
	require.NoError(t, err)

	require.Len(t, stub.sent, 1)
	require.Len(t, mailRepo.rows, 1)
	assert.True(t, mailRepo.rows[0].Sent)
	assert.Equal(t, "sub@example.com", mailRepo.rows[0].To)
}

func TestWorkerRetriesUnsent(t *testing.T) {
	mailRepo := &mailRepoStub{
		rows: []entity.SendEmailRequest{
			{Id: 1, To: "a@example.com", Subject: "s", Html: "<p>hi</p>"},
			{Id: 2, To: "b@example.com", Subject: "s", Html: "<p>hi</p>", Sent: true},
		},
	}
	m, stub := testMailer(t, mailRepo)

	require.NoError(t, m.handleUnsent(context.Background()))

	// only the unsent row went out
	require.Len(t, stub.sent, 1)
	assert.True(t, mailRepo.rows[0].Sent)
}

func TestWorkerRecordsFailure(t *testing.T) {
	mailRepo := &mailRepoStub{
		rows: []entity.SendEmailRequest{
			{Id: 1, To: "a@example.com", Subject: "s", Html: "<p>hi</p>"},
		},
	}
	m, stub := testMailer(t, mailRepo)
	stub.status = http.StatusBadRequest

	require.NoError(t, m.handleUnsent(context.Background()))

	assert.False(t, mailRepo.rows[0].Sent)
	assert.True(t, mailRepo.rows[0].ErrMsg.Valid)

	// rows with a recorded error are skipped until operators clear them
	stub.sent = nil
	require.NoError(t, m.handleUnsent(context.Background()))
	assert.Empty(t, stub.sent)
}

func TestStartStop(t *testing.T) {
	m, _ := testMailer(t, &mailRepoStub{})

	require.NoError(t, m.Start(context.Background()))
	assert.Error(t, m.Start(context.Background()))
	require.NoError(t, m.Stop())
	assert.Error(t, m.Stop())
}
