package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type UserDTO struct {
	ID            string    `json:"id"`
	Nickname      string    `json:"nickname"`
	TotalFocusSec int64     `json:"total_focus_sec"`
	CreatedAt     time.Time `json:"created_at" example:"2025-07-27T16:05:05Z"`
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrNicknameTaken   = errors.New("nickname already taken")
	ErrNicknameInvalid = errors.New("nickname must be 2-20 characters")
)

// IUserService is the user-directory collaborator. The realtime core only
// needs it to resolve identities and manage nicknames; everything else about
// users lives outside this process.
type IUserService interface {
	LookupUser(ctx context.Context, id string) (*UserDTO, error)
	ValidateNickname(ctx context.Context, nickname string) error
	UpdateNickname(ctx context.Context, id, nickname string) error
}

type userService struct {
	db *sql.DB
}

func NewUserService(db *sql.DB) IUserService {
	return &userService{db: db}
}

func (svc *userService) LookupUser(ctx context.Context, id string) (*UserDTO, error) {
	const q = `SELECT id, nickname, coalesce(total_focus_sec,0), created_at
	             FROM users WHERE id = $1`
	dto := &UserDTO{}
	err := svc.db.QueryRowContext(ctx, q, id).
		Scan(&dto.ID, &dto.Nickname, &dto.TotalFocusSec, &dto.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (svc *userService) ValidateNickname(ctx context.Context, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if len(nickname) < 2 || len(nickname) > 20 {
		return ErrNicknameInvalid
	}

	var n int
	err := svc.db.QueryRowContext(ctx,
		`SELECT count(*) FROM users WHERE nickname = $1`, nickname).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrNicknameTaken
	}
	return nil
}

func (svc *userService) UpdateNickname(ctx context.Context, id, nickname string) error {
	if err := svc.ValidateNickname(ctx, nickname); err != nil {
		return err
	}

	res, err := svc.db.ExecContext(ctx,
		`UPDATE users SET nickname = $2 WHERE id = $1`, id, strings.TrimSpace(nickname))
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
