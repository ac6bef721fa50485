// Package identity owns accounts: phone registration, code confirmation,
// authentication, phone changes and profile settings.
package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"spokd/internal/core"
)

type Service struct {
	Logger *slog.Logger

	Accounts  core.AccountRepository
	Codes     core.CodeStore
	SMS       core.SMSGateway
	Tokens    *Tokens
	Publisher core.EventPublisher
}

func (s *Service) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "identity.Service")
	return nil
}

// RegisterPhone starts a registration: the phone must be unused, a
// confirmation code is issued and sent out.
func (s *Service) RegisterPhone(ctx context.Context, phone string) error {
	if err := validatePhone(phone); err != nil {
		return err
	}

	_, err := s.Accounts.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		return core.ErrPhoneTaken
	case !errors.Is(err, core.ErrAccountNotFound):
		return err
	}

	return s.issueCode(ctx, phone)
}

// ConfirmCode is registration step two: it checks the code without consuming
// it, the final step re-checks.
func (s *Service) ConfirmCode(ctx context.Context, phone, code string) error {
	if err := validatePhone(phone); err != nil {
		return err
	}
	return s.checkCode(ctx, phone, code)
}

type RegistrationParams struct {
	Phone string
	Code  string

	Nickname string
	Gender   string
	Birthday time.Time
	Location string
	Geo      core.Geo

	// Phones from the new user's address book; the ones already registered
	// come back as contact IDs and their owners are notified.
	ContactPhones []string
}

type Registration struct {
	Account    *core.Account
	Token      string
	ContactIDs []int64
}

// CompleteRegistration is the final step: the code is consumed, the account
// created and a bearer token issued.
func (s *Service) CompleteRegistration(ctx context.Context, params RegistrationParams) (*Registration, error) {
	if err := validatePhone(params.Phone); err != nil {
		return nil, err
	}
	if err := s.checkCode(ctx, params.Phone, params.Code); err != nil {
		return nil, err
	}
	if err := validateNickname(params.Nickname); err != nil {
		return nil, err
	}
	if err := validateGender(params.Gender); err != nil {
		return nil, err
	}
	if err := validateLocation(params.Location); err != nil {
		return nil, err
	}

	account := &core.Account{
		Phone:    params.Phone,
		Nickname: params.Nickname,
		Gender:   params.Gender,
		Birthday: params.Birthday,
		Location: params.Location,
		Geo:      params.Geo,
		Status:   core.AccountActive,
	}
	if err := s.Accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	if err := s.Codes.Delete(ctx, params.Phone); err != nil {
		s.Logger.Warn("code cleanup failed", "error", err)
	}

	contactIDs, err := s.Accounts.IDsByPhones(ctx, params.ContactPhones)
	if err != nil {
		return nil, err
	}

	if len(contactIDs) > 0 {
		s.publish(ctx, core.Event{
			Type:      core.EventRegistration,
			ActorID:   account.ID,
			TargetIDs: contactIDs,
		})
	}

	token, err := s.Tokens.Issue(account.ID, time.Now())
	if err != nil {
		return nil, err
	}

	return &Registration{Account: account, Token: token, ContactIDs: contactIDs}, nil
}

// RequestLogin issues a login code for an existing account.
func (s *Service) RequestLogin(ctx context.Context, phone string) error {
	if err := validatePhone(phone); err != nil {
		return err
	}

	if _, err := s.activeAccount(ctx, phone); err != nil {
		return err
	}

	return s.issueCode(ctx, phone)
}

// Authenticate exchanges a phone and a fresh code for a bearer token.
func (s *Service) Authenticate(ctx context.Context, phone, code string) (*core.Account, string, error) {
	if err := validatePhone(phone); err != nil {
		return nil, "", err
	}
	if err := s.checkCode(ctx, phone, code); err != nil {
		return nil, "", err
	}

	account, err := s.activeAccount(ctx, phone)
	if err != nil {
		return nil, "", err
	}

	if err := s.Codes.Delete(ctx, phone); err != nil {
		s.Logger.Warn("code cleanup failed", "error", err)
	}

	token, err := s.Tokens.Issue(account.ID, time.Now())
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// Unregister soft-deletes: history stays, the phone frees up never.
func (s *Service) Unregister(ctx context.Context, userID int64) error {
	account, err := s.Accounts.Get(ctx, userID)
	if err != nil {
		return err
	}

	account.Status = core.AccountDeleted
	return s.Accounts.Update(ctx, account)
}

// RequestPhoneUpdate sends a confirmation code to the new phone.
func (s *Service) RequestPhoneUpdate(ctx context.Context, userID int64, newPhone string) error {
	if err := validatePhone(newPhone); err != nil {
		return err
	}

	_, err := s.Accounts.GetByPhone(ctx, newPhone)
	switch {
	case err == nil:
		return core.ErrPhoneTaken
	case !errors.Is(err, core.ErrAccountNotFound):
		return err
	}

	return s.issueCode(ctx, newPhone)
}

// ConfirmPhoneUpdate consumes the code sent to the new phone and rebinds the
// account.
func (s *Service) ConfirmPhoneUpdate(ctx context.Context, userID int64, newPhone, code string) error {
	if err := validatePhone(newPhone); err != nil {
		return err
	}
	if err := s.checkCode(ctx, newPhone, code); err != nil {
		return err
	}

	account, err := s.Accounts.Get(ctx, userID)
	if err != nil {
		return err
	}

	account.Phone = newPhone
	if err := s.Accounts.Update(ctx, account); err != nil {
		return err
	}

	if err := s.Codes.Delete(ctx, newPhone); err != nil {
		s.Logger.Warn("code cleanup failed", "error", err)
	}
	return nil
}

type ProfileParams struct {
	Nickname   string
	Gender     string
	Birthday   time.Time
	Location   string
	Geo        core.Geo
	PictureURL string
	CoverURL   string
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, params ProfileParams) (*core.Account, error) {
	account, err := s.Accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Nickname != "" {
		if err := validateNickname(params.Nickname); err != nil {
			return nil, err
		}
		account.Nickname = params.Nickname
	}
	if params.Gender != "" {
		if err := validateGender(params.Gender); err != nil {
			return nil, err
		}
		account.Gender = params.Gender
	}
	if params.Location != "" {
		if err := validateLocation(params.Location); err != nil {
			return nil, err
		}
		account.Location = params.Location
	}
	if !params.Birthday.IsZero() {
		account.Birthday = params.Birthday
	}
	if params.Geo != (core.Geo{}) {
		account.Geo = params.Geo
	}
	if params.PictureURL != "" {
		account.PictureURL = params.PictureURL
	}
	if params.CoverURL != "" {
		account.CoverURL = params.CoverURL
	}

	if err := s.Accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

type Settings struct {
	HelpEnabled       bool
	FollowersPrivate  bool
	FollowingsPrivate bool
}

func (s *Service) UpdateSettings(ctx context.Context, userID int64, settings Settings) (*core.Account, error) {
	account, err := s.Accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	account.HelpEnabled = settings.HelpEnabled
	account.FollowersPrivate = settings.FollowersPrivate
	account.FollowingsPrivate = settings.FollowingsPrivate

	if err := s.Accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

const (
	minSupportLen = 10
	maxSupportLen = 1200
)

// Support records a support request. There is no ticketing backend, the
// request lands in the structured log where the ops tooling picks it up.
func (s *Service) Support(ctx context.Context, userID int64, text string) error {
	length := len([]rune(text))
	if length < minSupportLen || length > maxSupportLen {
		return core.ErrInvalidSupportText
	}

	account, err := s.Accounts.Get(ctx, userID)
	if err != nil {
		return err
	}

	s.Logger.Info("support request",
		"user", account.ID,
		"phone", account.Phone,
		"text", text,
	)
	return nil
}

func (s *Service) activeAccount(ctx context.Context, phone string) (*core.Account, error) {
	account, err := s.Accounts.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	switch account.Status {
	case core.AccountSuspended:
		return nil, core.ErrAccountSuspended
	case core.AccountDeleted:
		return nil, core.ErrAccountDeleted
	}
	return account, nil
}

func (s *Service) issueCode(ctx context.Context, phone string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := s.Codes.Put(ctx, phone, code); err != nil {
		return err
	}
	return s.SMS.SendCode(ctx, phone, code)
}

func (s *Service) checkCode(ctx context.Context, phone, code string) error {
	if err := validateCode(code); err != nil {
		return err
	}

	stored, err := s.Codes.Get(ctx, phone)
	if err != nil {
		return err
	}
	if stored != code {
		return core.ErrWrongCode
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event core.Event) {
	event.ID = uuid.NewString()
	event.At = time.Now()

	if err := s.Publisher.Publish(ctx, event); err != nil {
		s.Logger.Error("event publish failed", "type", event.Type, "error", err)
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
