package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
)

func newAuthFixture(t *testing.T) (AuthService, repos.UserRepo, *recordingMailer, func() *types.User) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	mailer := &recordingMailer{}
	svc := NewAuthService(db, log, userRepo, newTestIssuer(t), mailer)
	seed := func() *types.User {
		return testutil.SeedUser(t, context.Background(), db, "dana@example.com")
	}
	return svc, userRepo, mailer, seed
}

func TestLoginSuccessStampsLastLogin(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _, seed := newAuthFixture(t)
	u := seed()

	res, err := svc.Login(ctx, "  DANA@example.com ", testutil.SeedPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.RefreshToken == "" {
		t.Fatalf("expected both tokens")
	}
	if res.ExpiresIn != int64((7 * 24 * 3600)) {
		t.Fatalf("expiresIn: got=%d", res.ExpiresIn)
	}
	got, err := userRepo.GetByID(ctx, nil, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.LastLogin == nil {
		t.Fatalf("lastLogin not stamped")
	}
	id, err := svc.Authenticate(ctx, res.Token)
	if err != nil || id != u.ID {
		t.Fatalf("Authenticate: id=%s err=%v", id, err)
	}
}

func TestLoginWrongPasswordLeavesLastLogin(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _, seed := newAuthFixture(t)
	u := seed()

	_, err := svc.Login(ctx, u.Email, "not-the-password")
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_credentials")

	got, err := userRepo.GetByID(ctx, nil, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.LastLogin != nil {
		t.Fatalf("lastLogin should be untouched, got %v", got.LastLogin)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_credentials")
}

func TestLoginInactiveAccount(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _, seed := newAuthFixture(t)
	u := seed()
	if err := userRepo.UpdateStatus(ctx, nil, u.ID, types.UserStatusSuspended); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	_, err := svc.Login(ctx, u.Email, testutil.SeedPassword)
	wantAPIError(t, err, http.StatusUnauthorized, "account_inactive")
}

func TestAuthenticateRejectsSuspendedHolder(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _, seed := newAuthFixture(t)
	u := seed()

	res, err := svc.Login(ctx, u.Email, testutil.SeedPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := userRepo.UpdateStatus(ctx, nil, u.ID, types.UserStatusSuspended); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	_, err = svc.Authenticate(ctx, res.Token)
	wantAPIError(t, err, http.StatusUnauthorized, "account_inactive")

	if err := userRepo.UpdateStatus(ctx, nil, u.ID, types.UserStatusActive); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if id, err := svc.Authenticate(ctx, res.Token); err != nil || id != u.ID {
		t.Fatalf("reactivated Authenticate: id=%s err=%v", id, err)
	}
}

func TestLoginRejectsPlaintextStoredPassword(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	svc := NewAuthService(db, log, userRepo, newTestIssuer(t), &recordingMailer{})
	if _, err := userRepo.Create(ctx, nil, &types.User{
		Name: "Legacy", Email: "legacy@example.com", Password: "plain-pass",
		Role: types.RoleDeveloper, Department: "General", Status: types.UserStatusActive,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Login(ctx, "legacy@example.com", "plain-pass")
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_credentials")
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, mailer, seed := newAuthFixture(t)
	seed()

	res, err := svc.Register(ctx, RegisterInput{Name: " Riley ", Email: "Riley@Example.com", Password: "abcdef"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.User.Email != "riley@example.com" || res.User.Name != "Riley" {
		t.Fatalf("user not normalized: %+v", res.User)
	}
	if res.User.Role != types.RoleDeveloper || res.User.Department != "General" {
		t.Fatalf("defaults not applied: role=%s dept=%s", res.User.Role, res.User.Department)
	}
	if res.User.Password == "abcdef" {
		t.Fatalf("password stored in plaintext")
	}
	if len(mailer.welcome) != 1 || mailer.welcome[0] != "riley@example.com" {
		t.Fatalf("welcome mail: %v", mailer.welcome)
	}

	_, err = svc.Register(ctx, RegisterInput{Name: "Dup", Email: "dana@example.com", Password: "abcdef"})
	wantAPIError(t, err, http.StatusBadRequest, "conflict")
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "abcdef"}, "name"},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "abcdef"}, "email"},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "abc"}, "password"},
		{"unknown role", RegisterInput{Name: "A", Email: "a@example.com", Password: "abcdef", Role: "wizard"}, "role"},
		{"admin role", RegisterInput{Name: "A", Email: "a@example.com", Password: "abcdef", Role: "admin"}, "role"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			wantAPIError(t, err, http.StatusBadRequest, "validation_failed")
			if _, ok := apierrFields(err)[tc.field]; !ok {
				t.Fatalf("expected field error for %s, got %v", tc.field, apierrFields(err))
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _, seed := newAuthFixture(t)
	u := seed()
	res, err := svc.Login(ctx, u.Email, testutil.SeedPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	next, err := svc.RefreshToken(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if next.User.ID != u.ID {
		t.Fatalf("refreshed user mismatch")
	}
	_, err = svc.RefreshToken(ctx, res.Token)
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_token")
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	svc, _, mailer, seed := newAuthFixture(t)
	u := seed()

	err := svc.UpdatePassword(ctx, u.ID, "wrong", "brand-new")
	wantAPIError(t, err, http.StatusBadRequest, "invalid_password")

	if err := svc.UpdatePassword(ctx, u.ID, testutil.SeedPassword, "brand-new"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := svc.Login(ctx, u.Email, "brand-new"); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
	if len(mailer.changed) != 1 {
		t.Fatalf("password-changed mail count: %d", len(mailer.changed))
	}
}
