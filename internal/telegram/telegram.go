package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"immopro/server/internal/logging"
	"immopro/server/internal/models"
)

const DefaultAPIURL = "https://api.telegram.org"

type Config struct {
	Enabled  bool
	BotToken string
	ChatID   string
	APIURL   string
}

type Service struct {
	logger *logrus.Logger
	client *resty.Client
	config Config
}

func NewService(cfg Config, logger *logrus.Logger) *Service {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &Service{
		logger: logging.OrDefault(logger),
		client: resty.New().
			SetBaseURL(cfg.APIURL).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json"),
		config: cfg,
	}
}

// IsEnabled reports whether messages are actually sent
func (s *Service) IsEnabled() bool {
	return s.config.Enabled
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends an HTML message to the configured chat. It is a no-op
// when the service is disabled.
func (s *Service) SendMessage(ctx context.Context, message string) error {
	if !s.config.Enabled {
		return nil
	}
	if s.config.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}
	if s.config.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{
			ChatID:    s.config.ChatID,
			Text:      message,
			ParseMode: "HTML",
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", s.config.BotToken))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return errors.New("invalid bot token - please check your token from @BotFather")
	case http.StatusBadRequest:
		return fmt.Errorf("invalid chat ID or message format: %s", resp.String())
	case http.StatusForbidden:
		return errors.New("bot was blocked by the user or chat")
	case http.StatusNotFound:
		return errors.New("bot not found - please check your token from @BotFather")
	default:
		return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode(), resp.String())
	}
}

// NotifyScenario sends the alert for a saved scenario
func (s *Service) NotifyScenario(ctx context.Context, scenario *models.Scenario) error {
	s.logger.WithFields(logrus.Fields{
		"scenario_id":  scenario.ID,
		"global_score": scenario.GlobalScore,
	}).Debug("Sending scenario alert")
	return s.SendMessage(ctx, FormatScenario(scenario))
}

// FormatScenario renders the alert text of a scenario
func FormatScenario(scenario *models.Scenario) string {
	p := scenario.Property

	strategy := "none"
	if scenario.RecommendedStrategy != "" {
		strategy = scenario.RecommendedStrategy
	}

	location := p.Location
	if location == "" {
		location = "Unknown location"
	}

	return fmt.Sprintf(
		"<b>Investment opportunity: %s</b>\n\n"+
			"🏠 %s\n"+
			"📍 %s\n"+
			"💰 Price: %.0f EUR\n"+
			"📐 %.0f m²\n"+
			"📈 ROI: %.1f%%\n"+
			"⭐ Global score: %.1f/10\n"+
			"⚠️ Risk: %s\n"+
			"🧭 Best strategy: %s",
		scenario.Recommendation,
		html.EscapeString(scenario.Name),
		html.EscapeString(location),
		p.Price,
		p.Surface,
		scenario.ROI,
		scenario.GlobalScore,
		scenario.RiskLevel,
		strategy,
	)
}
