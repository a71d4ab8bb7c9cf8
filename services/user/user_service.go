package user_service

import (
	"context"
	"fmt"
	"strings"

	"github.com/WeSplit-io/WeSplit-Backend/services/address"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
)

// UserStore is what the service needs from persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, name, avatarURL string) (*User, error)
	UpdateWalletAddress(ctx context.Context, userID int64, walletAddress string) (*User, error)
	UpsertPushToken(ctx context.Context, userID int64, token, platform string) (*PushToken, error)
	DeletePushToken(ctx context.Context, userID int64, token string) error
	PushTokensFor(ctx context.Context, userIDs []int64) ([]PushToken, error)
}

type UserService struct {
	repo   UserStore
	logger *logging.Logger
}

func NewUserService(repo UserStore, logger *logging.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// Register creates a user with a bcrypt-hashed password. Token issuance
// stays with the api layer.
func (u *UserService) Register(ctx context.Context, name, email, phone, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("name, email and password are required")
	}

	hashed, err := utils.GenerateHashValue(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	newUser, err := u.repo.CreateUser(ctx, &User{
		Name:           name,
		Email:          email,
		PhoneNumber:    strings.TrimSpace(phone),
		HashedPassword: hashed,
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info(fmt.Sprintf("Registered user %d", newUser.ID))
	return newUser, nil
}

// Login verifies credentials and returns the user. A missing user and a
// wrong password both come back as ErrBadCredentials so the response does
// not leak which one it was.
func (u *UserService) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := u.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if err := utils.VerifyHashValue(password, account.HashedPassword); err != nil {
		return nil, ErrBadCredentials
	}

	return account, nil
}

func (u *UserService) FetchUserByID(ctx context.Context, userID int64) (*User, error) {
	return u.repo.GetByID(ctx, userID)
}

func (u *UserService) FetchUserByEmail(ctx context.Context, email string) (*User, error) {
	return u.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (u *UserService) UpdateProfile(ctx context.Context, userID int64, name, avatarURL string) (*User, error) {
	return u.repo.UpdateProfile(ctx, userID, strings.TrimSpace(name), strings.TrimSpace(avatarURL))
}

// SetWalletAddress pins the user's personal Solana address. Unknown
// classifications are allowed (unverified but plausible); invalid ones are
// not.
func (u *UserService) SetWalletAddress(ctx context.Context, userID int64, walletAddress string) (*User, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if !address.IsUsable(walletAddress) {
		cls := address.Classify(walletAddress)
		return nil, fmt.Errorf("%w: %s", ErrBadWalletAddress, cls.Reason)
	}

	return u.repo.UpdateWalletAddress(ctx, userID, walletAddress)
}

func (u *UserService) AddUserExpoToken(ctx context.Context, userID int64, expoToken, platform string) (*PushToken, error) {
	expoToken = strings.TrimSpace(expoToken)
	if expoToken == "" {
		return nil, fmt.Errorf("push token is required")
	}

	return u.repo.UpsertPushToken(ctx, userID, expoToken, platform)
}

func (u *UserService) RemoveUserExpoToken(ctx context.Context, userID int64, expoToken string) error {
	return u.repo.DeletePushToken(ctx, userID, expoToken)
}

// ExpoTokensFor feeds the notification fanout.
func (u *UserService) ExpoTokensFor(ctx context.Context, userIDs []int64) ([]PushToken, error) {
	return u.repo.PushTokensFor(ctx, userIDs)
}
