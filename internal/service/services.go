package service

import (
	"github.com/dragomirurdov/AtrijumApi/internal/auth"
	"github.com/dragomirurdov/AtrijumApi/internal/config"
	"github.com/dragomirurdov/AtrijumApi/internal/mail"
	"github.com/dragomirurdov/AtrijumApi/internal/repository"
)

type Services struct {
	Auth *AuthService
}

func NewServices(repos *repository.Repositories, mailer mail.Mailer, cfg *config.Config, opts ...Option) *Services {
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTTTL)
	return &Services{
		Auth: NewAuthService(repos.User, repos.SessionToken, codec, mailer, cfg, opts...),
	}
}
