package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"gripinvest/ai"
	"gripinvest/mailer"
	"gripinvest/models"
	"gripinvest/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, assistant ai.Assistant) (*UserService, *mailer.Log) {
	t.Helper()
	mail := mailer.NewLog(nil)
	return NewUserService(newTestDB(t), assistant, mail, nil), mail
}

func TestSignup_Defaults(t *testing.T) {
	s, _ := newUserService(t, nil)

	u, err := s.Signup(context.Background(), SignupInput{
		FirstName: "Asha",
		Email:     "  Asha@Example.com ",
		Password:  "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, models.RiskModerate, u.RiskAppetite)
	assert.Equal(t, "100000.00", u.Balance.String())
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, "longenough", u.PasswordHash)
	assert.True(t, utils.CheckPassword(u.PasswordHash, "longenough"))
}

func TestSignup_Rejects(t *testing.T) {
	s, _ := newUserService(t, nil)
	ctx := context.Background()
	_, err := s.Signup(ctx, SignupInput{FirstName: "A", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   SignupInput
		want error
	}{
		{"duplicate email", SignupInput{FirstName: "B", Email: "A@example.com", Password: "password2"}, ErrEmailTaken},
		{"short password", SignupInput{FirstName: "B", Email: "b@example.com", Password: "short"}, ErrInvalidProfile},
		{"no first name", SignupInput{Email: "c@example.com", Password: "password3"}, ErrInvalidProfile},
		{"bad risk", SignupInput{FirstName: "D", Email: "d@example.com", Password: "password4", RiskAppetite: "yolo"}, ErrInvalidProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Signup(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	s, _ := newUserService(t, nil)
	ctx := context.Background()
	created, err := s.Signup(ctx, SignupInput{FirstName: "A", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = s.Authenticate(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, "Invalid email or password.", err.Error())
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, err = s.Authenticate(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newUserService(t, nil)
	ctx := context.Background()
	u, err := s.Signup(ctx, SignupInput{FirstName: "A", LastName: "B", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	got, err := s.UpdateProfile(ctx, u.ID, ProfileInput{FirstName: ptr("Anna"), RiskAppetite: ptr(models.RiskHigh)})
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.FirstName)
	assert.Equal(t, "B", got.LastName)
	assert.Equal(t, models.RiskHigh, got.RiskAppetite)

	reloaded, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", reloaded.FirstName)
	assert.Equal(t, models.RiskHigh, reloaded.RiskAppetite)

	_, err = s.UpdateProfile(ctx, u.ID, ProfileInput{RiskAppetite: ptr(models.RiskLevel("wild"))})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = s.UpdateProfile(ctx, "missing", ProfileInput{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

var otpPattern = regexp.MustCompile(`\b(\d{6})\b`)

func TestPasswordReset_Flow(t *testing.T) {
	s, mail := newUserService(t, nil)
	ctx := context.Background()
	_, err := s.Signup(ctx, SignupInput{FirstName: "A", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, s.RequestPasswordReset(ctx, "a@example.com"))
	sent := mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@example.com", sent[0].To)
	m := otpPattern.FindStringSubmatch(sent[0].Body)
	require.Len(t, m, 2)
	code := m[1]

	err = s.ResetPassword(ctx, "a@example.com", "000000", "newpassword")
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.Equal(t, "Invalid OTP.", err.Error())

	require.NoError(t, s.ResetPassword(ctx, "a@example.com", code, "newpassword"))
	_, err = s.Authenticate(ctx, "a@example.com", "newpassword")
	require.NoError(t, err)

	// consumed
	err = s.ResetPassword(ctx, "a@example.com", code, "another-password")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestPasswordReset_Expired(t *testing.T) {
	s, mail := newUserService(t, nil)
	ctx := context.Background()
	_, err := s.Signup(ctx, SignupInput{FirstName: "A", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	issued := time.Now()
	s.Now = fixedClock(issued)
	require.NoError(t, s.RequestPasswordReset(ctx, "a@example.com"))
	code := otpPattern.FindStringSubmatch(mail.Sent()[0].Body)[1]

	s.Now = fixedClock(issued.Add(11 * time.Minute))
	err = s.ResetPassword(ctx, "a@example.com", code, "newpassword")
	assert.ErrorIs(t, err, ErrOTPExpired)
	assert.Equal(t, "OTP has expired.", err.Error())

	var n int64
	require.NoError(t, s.DB.Model(&models.Otp{}).Count(&n).Error)
	assert.Zero(t, n, "expired code is deleted")

	_, err = s.Authenticate(ctx, "a@example.com", "password1")
	assert.NoError(t, err, "password unchanged")
}

func TestPasswordReset_UnknownEmail(t *testing.T) {
	s, mail := newUserService(t, nil)
	ctx := context.Background()

	err := s.RequestPasswordReset(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Empty(t, mail.Sent())

	err = s.ResetPassword(ctx, "ghost@example.com", "123456", "newpassword")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPasswordStrength(t *testing.T) {
	ctx := context.Background()

	s, _ := newUserService(t, &stubAssistant{strength: "Strong"})
	assert.Equal(t, "Strong", s.PasswordStrength(ctx, "whatever"))

	s, _ = newUserService(t, &stubAssistant{err: errStubAI})
	assert.Equal(t, "Strong", s.PasswordStrength(ctx, "C0rrect-Horse-Battery"))
}

func TestLocalPasswordStrength(t *testing.T) {
	tests := map[string]string{
		"abc":                  "Weak - Use at least 8 characters",
		"abcdefgh":             "Weak - Mix letters, numbers and symbols",
		"abcdefg1":             "Medium - Add special characters",
		"abcdef1!":             "Medium - Use a longer password",
		"Abcdefghij1!":         "Strong",
		"correct horse Staple": "Strong",
	}
	for in, want := range tests {
		assert.Equal(t, want, LocalPasswordStrength(in), in)
	}
}

func TestRecommendations(t *testing.T) {
	ctx := context.Background()
	stub := &stubAssistant{recs: []ai.Recommendation{{ProductID: "p1", ProductName: "AI pick"}}}
	s, _ := newUserService(t, stub)
	u, err := s.Signup(ctx, SignupInput{FirstName: "A", Email: "a@example.com", Password: "password1", RiskAppetite: models.RiskLow})
	require.NoError(t, err)

	recs, err := s.Recommendations(ctx, u.ID, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "AI pick", recs[0].ProductName)

	_, err = s.Recommendations(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecommendations_FallbackRanksByYield(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService(t, &stubAssistant{err: errStubAI})
	u, err := s.Signup(ctx, SignupInput{FirstName: "A", Email: "a@example.com", Password: "password1", RiskAppetite: models.RiskLow})
	require.NoError(t, err)

	var catalog []models.Product
	for _, y := range []string{"5.00", "9.00", "7.00", "6.00", "8.00", "4.00"} {
		catalog = append(catalog, *createProduct(t, s.DB, y, 12, "100", withName("Low "+y)))
	}
	catalog = append(catalog, *createProduct(t, s.DB, "20.00", 12, "100", withName("Risky"), withRisk(models.RiskHigh)))

	recs, err := s.Recommendations(ctx, u.ID, catalog)
	require.NoError(t, err)
	require.Len(t, recs, 5)
	assert.Equal(t, "Low 9.00", recs[0].ProductName)
	assert.Equal(t, "9.00%", recs[0].AnnualYield)
	assert.Equal(t, "Low 5.00", recs[4].ProductName)
	for _, r := range recs {
		assert.NotEqual(t, "Risky", r.ProductName)
		assert.Contains(t, r.Reason, "low risk appetite")
	}
}

func TestRankProducts_NoMatchUsesWholeCatalog(t *testing.T) {
	catalog := []models.Product{
		{ID: "a", Name: "A", RiskLevel: models.RiskHigh, AnnualYield: models.MoneyFromInt(3)},
		{ID: "b", Name: "B", RiskLevel: models.RiskHigh, AnnualYield: models.MoneyFromInt(5)},
	}
	recs := rankProducts(models.RiskLow, catalog)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[0].ProductID)
	assert.Empty(t, rankProducts(models.RiskLow, nil))
}
