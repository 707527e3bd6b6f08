package auth

import (
	"vkarchive/pkg/config"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/ratelimit"
	"vkarchive/pkg/vk"
)

// Session binds an account to API settings. Both handles share one
// limiter since VK limits requests per user.
type Session struct {
	account *Account
	cfg     *config.Config
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewSession creates a session. UserAgent on the account overrides the
// configured one.
func NewSession(account *Account, cfg *config.Config, limiter ratelimit.Limiter, log logger.Logger) *Session {
	if log == nil {
		log = logger.GetLogger()
	}
	if account.UserAgent != "" {
		vkCfg := *cfg
		vkCfg.VK.UserAgent = account.UserAgent
		cfg = &vkCfg
	}
	return &Session{account: account, cfg: cfg, limiter: limiter, logger: log}
}

// Account returns the session account
func (s *Session) Account() *Account {
	return s.account
}

// Handle returns the listing client
func (s *Session) Handle() *vk.Client {
	return vk.NewClientFromConfig(s.cfg, s.account.AccessToken, s.limiter, s.logger)
}

// ArchiveHandle returns the client used for audio lookups
func (s *Session) ArchiveHandle() *vk.Client {
	return vk.NewClientFromConfig(s.cfg, s.account.ArchivingToken(), s.limiter, s.logger.WithField("session", "archive"))
}

// AccountFromConfig returns an account for tokens given through config,
// flags or the environment, or nil when none are set
func AccountFromConfig(cfg *config.Config) *Account {
	if cfg.VK.AccessToken == "" {
		return nil
	}
	return &Account{
		Login:       "config",
		AccessToken: cfg.VK.AccessToken,
		AudioToken:  cfg.VK.AudioToken,
	}
}
