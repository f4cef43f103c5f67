package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"gripinvest/ai"
	"gripinvest/mailer"
	"gripinvest/models"
	"gripinvest/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	otpLifetime        = 10 * time.Minute
	maxRecommendations = 5
)

// StartingBalance is credited to every new account.
var StartingBalance = models.MoneyFromInt(100000)

// UserService covers registration, login, profile and password reset.
type UserService struct {
	DB   *gorm.DB
	AI   ai.Assistant
	Mail mailer.Sender
	Log  *slog.Logger
	Now  func() time.Time
}

func NewUserService(db *gorm.DB, assistant ai.Assistant, mail mailer.Sender, log *slog.Logger) *UserService {
	if assistant == nil {
		assistant = ai.Unavailable{}
	}
	if log == nil {
		log = slog.Default()
	}
	if mail == nil {
		mail = mailer.NewLog(log)
	}
	return &UserService{DB: db, AI: assistant, Mail: mail, Log: log, Now: time.Now}
}

func (s *UserService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SignupInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	RiskAppetite models.RiskLevel
}

// Signup creates a non-admin account with the starting balance.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	risk := in.RiskAppetite
	if risk == "" {
		risk = models.RiskModerate
	}
	if !risk.Valid() {
		return nil, invalid(ErrInvalidProfile, "Invalid risk appetite %q.", risk)
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, invalid(ErrInvalidProfile, "First name is required.")
	}

	if len(in.Password) < utils.MinPasswordLength {
		return nil, invalid(ErrInvalidProfile, "Password must be at least 8 characters long.")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalid(ErrEmailTaken, "User with this email already exists.")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		RiskAppetite: risk,
		Balance:      StartingBalance,
		IsAdmin:      false,
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		// a concurrent signup may have won the unique index
		if taken, _ := s.emailTaken(ctx, email); taken {
			return nil, invalid(ErrEmailTaken, "User with this email already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *UserService) emailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *UserService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate returns the user owning email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, invalid(ErrInvalidCredential, "Invalid email or password.")
		}
		return nil, err
	}
	if !utils.CheckPassword(u.PasswordHash, password) {
		return nil, invalid(ErrInvalidCredential, "Invalid email or password.")
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

type ProfileInput struct {
	FirstName    *string
	LastName     *string
	RiskAppetite *models.RiskLevel
}

// UpdateProfile changes the editable profile fields. Empty values keep the
// current ones.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) != "" {
		u.FirstName = strings.TrimSpace(*in.FirstName)
		updates["first_name"] = u.FirstName
	}
	if in.LastName != nil && strings.TrimSpace(*in.LastName) != "" {
		u.LastName = strings.TrimSpace(*in.LastName)
		updates["last_name"] = u.LastName
	}
	if in.RiskAppetite != nil && *in.RiskAppetite != "" {
		if !in.RiskAppetite.Valid() {
			return nil, invalid(ErrInvalidProfile, "Invalid risk appetite %q.", *in.RiskAppetite)
		}
		u.RiskAppetite = *in.RiskAppetite
		updates["risk_appetite"] = u.RiskAppetite
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile %s: %w", id, err)
	}
	return u, nil
}

// RequestPasswordReset issues a six-digit code valid for ten minutes and
// mails it to the account owner.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return invalid(ErrUserNotFound, "User with that email not found.")
		}
		return err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	otp := &models.Otp{
		Code:      code,
		UserID:    u.ID,
		ExpiresAt: s.now().Add(otpLifetime),
	}
	if err := s.DB.WithContext(ctx).Create(otp).Error; err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	msg := mailer.Message{
		To:      u.Email,
		Subject: "Your Password Reset OTP",
		Body:    fmt.Sprintf("Your OTP for password reset is: %s\nIt will expire in 10 minutes.", code),
	}
	if err := s.Mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// ResetPassword consumes a valid code and replaces the password. An expired
// code is removed.
func (s *UserService) ResetPassword(ctx context.Context, email, code, password string) error {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return invalid(ErrUserNotFound, "User not found.")
		}
		return err
	}

	db := s.DB.WithContext(ctx)
	var otp models.Otp
	err = db.Where("user_id = ? AND otp = ?", u.ID, strings.TrimSpace(code)).Order("id DESC").First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid(ErrInvalidOTP, "Invalid OTP.")
		}
		return err
	}
	if otp.Expired(s.now()) {
		if err := db.Delete(&otp).Error; err != nil {
			return err
		}
		return invalid(ErrOTPExpired, "OTP has expired.")
	}

	if len(password) < utils.MinPasswordLength {
		return invalid(ErrInvalidProfile, "Password must be at least 8 characters long.")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", u.ID).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return tx.Delete(&otp).Error
	})
}

// PasswordStrength classifies password with the AI collaborator, falling back
// to a local heuristic.
func (s *UserService) PasswordStrength(ctx context.Context, password string) string {
	out, err := s.AI.ScorePassword(ctx, password)
	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			s.Log.Warn("password strength generation failed", slog.String("error", err.Error()))
		}
		return LocalPasswordStrength(password)
	}
	return out
}

// LocalPasswordStrength rates password by length and character classes.
func LocalPasswordStrength(password string) string {
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	classes := 0
	for _, b := range []bool{lower, upper, digit, special} {
		if b {
			classes++
		}
	}
	n := len([]rune(password))

	switch {
	case n >= 12 && classes >= 3:
		return "Strong"
	case n >= 8 && classes >= 2:
		if !special {
			return "Medium - Add special characters"
		}
		return "Medium - Use a longer password"
	case n < 8:
		return "Weak - Use at least 8 characters"
	default:
		return "Weak - Mix letters, numbers and symbols"
	}
}

// Recommendations suggests products for the user. Without AI it ranks the
// products matching the user's risk appetite by yield.
func (s *UserService) Recommendations(ctx context.Context, userID string, catalog []models.Product) ([]ai.Recommendation, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	investments, err := ListInvestments(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	recs, err := s.AI.Recommend(ctx, u.RiskAppetite, catalog, investments)
	if err == nil {
		return recs, nil
	}
	s.Log.Warn("recommendation generation failed, using local ranking", slog.String("user_id", userID), slog.String("error", err.Error()))
	return rankProducts(u.RiskAppetite, catalog), nil
}

func rankProducts(risk models.RiskLevel, catalog []models.Product) []ai.Recommendation {
	candidates := make([]models.Product, 0, len(catalog))
	for _, p := range catalog {
		if p.RiskLevel == risk {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, catalog...)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AnnualYield.GreaterThan(candidates[j].AnnualYield.Decimal)
	})
	if len(candidates) > maxRecommendations {
		candidates = candidates[:maxRecommendations]
	}

	recs := make([]ai.Recommendation, 0, len(candidates))
	for _, p := range candidates {
		reason := fmt.Sprintf("Offers %s%% a year over %d months.", p.AnnualYield, p.TenureMonths)
		if p.RiskLevel == risk {
			reason = fmt.Sprintf("Matches your %s risk appetite and offers %s%% a year over %d months.", risk, p.AnnualYield, p.TenureMonths)
		}
		recs = append(recs, ai.Recommendation{
			ProductID:   p.ID,
			ProductName: p.Name,
			Reason:      reason,
			AnnualYield: p.AnnualYield.String() + "%",
		})
	}
	return recs
}
