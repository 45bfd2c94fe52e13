package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/domain/settings"
	"github.com/ozo-extended/ozo-agent/internal/pkg/flight"
	"github.com/ozo-extended/ozo-agent/internal/portal"
	attendanceService "github.com/ozo-extended/ozo-agent/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	stored  *settings.Settings
	loadErr error
	saveErr error
}

func (r *memoryRepository) Load(context.Context) (settings.Settings, error) {
	if r.loadErr != nil {
		return settings.Defaults(), r.loadErr
	}
	if r.stored == nil {
		return settings.Defaults(), nil
	}
	return *r.stored, nil
}

func (r *memoryRepository) Save(_ context.Context, s settings.Settings) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = &s
	return nil
}

type stubSession struct {
	attendance.Session
	authErr error
	closed  int
}

func (s *stubSession) Authenticate(context.Context) error { return s.authErr }
func (s *stubSession) Close() error                       { s.closed++; return nil }

type stubOpener struct {
	session *stubSession
	err     error
	last    attendance.OpenOptions
}

func (o *stubOpener) Open(_ context.Context, opts attendance.OpenOptions) (attendance.Session, error) {
	o.last = opts
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

type online bool

func (o online) Online(context.Context) bool { return bool(o) }

func newService(repo *memoryRepository, opener *stubOpener) *SettingsServiceImpl {
	return NewSettingsService(repo, opener, flight.NewCoordinator(), online(true))
}

func boolPtr(b bool) *bool { return &b }

func TestSettingsService_Get_FallsBackToDefaults(t *testing.T) {
	svc := newService(&memoryRepository{loadErr: settings.ErrSettingsCorrupt}, &stubOpener{})

	assert.Equal(t, settings.Defaults(), svc.Get(context.Background()))
	assert.False(t, svc.IsConfigured(context.Background()))
}

func TestSettingsService_Save_PersistsAndRunsHooks(t *testing.T) {
	repo := &memoryRepository{}
	svc := newService(repo, &stubOpener{})
	var hooked []settings.Settings
	svc.OnSave(func(s settings.Settings) { hooked = append(hooked, s) })

	// Act
	result := svc.Save(context.Background(), settings.SaveRequest{
		UserID:      " taro@example.com ",
		Password:    "secret",
		AutoClockIn: boolPtr(true),
	})

	// Assert
	assert.Equal(t, attendance.Ok("Settings saved."), result)
	require.NotNil(t, repo.stored)
	assert.Equal(t, "taro@example.com", repo.stored.UserID)
	assert.True(t, repo.stored.AutoClockIn)
	assert.True(t, repo.stored.HeadlessMode)
	require.Len(t, hooked, 1)
	assert.True(t, svc.IsConfigured(context.Background()))
}

func TestSettingsService_Save_KeepPasswordKeepsStored(t *testing.T) {
	stored := settings.Defaults()
	stored.UserID = "taro@example.com"
	stored.Password = "secret"
	repo := &memoryRepository{stored: &stored}
	svc := newService(repo, &stubOpener{})

	// Act
	result := svc.Save(context.Background(), settings.SaveRequest{
		UserID:       "taro@example.com",
		KeepPassword: true,
		HeadlessMode: boolPtr(false),
	})

	// Assert
	assert.True(t, result.Success)
	assert.Equal(t, "secret", repo.stored.Password)
	assert.False(t, repo.stored.HeadlessMode)
}

func TestSettingsService_Save_EmptyPasswordClearsStored(t *testing.T) {
	stored := settings.Defaults()
	stored.UserID = "taro@example.com"
	stored.Password = "secret"
	repo := &memoryRepository{stored: &stored}
	svc := newService(repo, &stubOpener{})

	// Act
	result := svc.Save(context.Background(), settings.SaveRequest{UserID: "taro@example.com"})

	// Assert
	assert.True(t, result.Success)
	assert.Empty(t, repo.stored.Password)
	assert.False(t, svc.IsConfigured(context.Background()))
}

func TestSettingsService_Save_AcceptsPlainUserID(t *testing.T) {
	repo := &memoryRepository{}
	svc := newService(repo, &stubOpener{})

	result := svc.Save(context.Background(), settings.SaveRequest{UserID: " taro ", Password: "x"})

	assert.True(t, result.Success)
	require.NotNil(t, repo.stored)
	assert.Equal(t, "taro", repo.stored.UserID)
}

func TestSettingsService_Save_RejectsPasswordWithKeepPassword(t *testing.T) {
	repo := &memoryRepository{}
	svc := newService(repo, &stubOpener{})
	hooked := false
	svc.OnSave(func(settings.Settings) { hooked = true })

	result := svc.Save(context.Background(), settings.SaveRequest{UserID: "taro", Password: "x", KeepPassword: true})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "KEEP_PASSWORD")
	assert.Nil(t, repo.stored)
	assert.False(t, hooked)
}

func TestSettingsService_Save_RepositoryFailure(t *testing.T) {
	svc := newService(&memoryRepository{saveErr: errors.New("disk full")}, &stubOpener{})

	result := svc.Save(context.Background(), settings.SaveRequest{UserID: "taro@example.com", Password: "x"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "disk full")
}

func TestSettingsService_TestLogin(t *testing.T) {
	tests := []struct {
		name    string
		req     settings.TestLoginRequest
		opener  *stubOpener
		success bool
		message string
	}{
		{
			name:    "success",
			req:     settings.TestLoginRequest{UserID: "taro@example.com", Password: "secret"},
			opener:  &stubOpener{session: &stubSession{}},
			success: true,
			message: "Login succeeded.",
		},
		{
			name:    "missing password",
			req:     settings.TestLoginRequest{UserID: "taro@example.com"},
			opener:  &stubOpener{session: &stubSession{}},
			message: "Enter both USER_ID and PASSWORD.",
		},
		{
			name:    "browser missing",
			req:     settings.TestLoginRequest{UserID: "taro@example.com", Password: "secret"},
			opener:  &stubOpener{err: portal.ErrLaunch},
			message: attendanceService.MsgLaunchHint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(&memoryRepository{}, tt.opener)

			result := svc.TestLogin(context.Background(), tt.req)

			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}

func TestSettingsService_TestLogin_AuthFailureClosesSession(t *testing.T) {
	session := &stubSession{authErr: portal.ErrAuth}
	opener := &stubOpener{session: session}
	svc := newService(&memoryRepository{}, opener)

	result := svc.TestLogin(context.Background(), settings.TestLoginRequest{UserID: "taro@example.com", Password: "wrong"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Sign-in failed")
	assert.Equal(t, 1, session.closed)
	assert.Equal(t, "wrong", opener.last.Credentials.Password)
}

func TestSettingsService_TestLogin_Busy(t *testing.T) {
	coord := flight.NewCoordinator()
	release, ok := coord.TryAcquire()
	require.True(t, ok)
	defer release()
	svc := NewSettingsService(&memoryRepository{}, &stubOpener{session: &stubSession{}}, coord, online(true))

	result := svc.TestLogin(context.Background(), settings.TestLoginRequest{UserID: "a@b.co", Password: "x"})

	assert.Equal(t, attendance.Fail(attendanceService.MsgBusy), result)
}
