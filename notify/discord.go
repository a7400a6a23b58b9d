package notify

import (
	"context"
	"fmt"
	"time"

	"guesser/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// MessageSender is the part of the Discord REST client used for announcements
type MessageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts a summary of every finished game to a channel
type DiscordAnnouncer struct {
	sender    MessageSender
	channelID string
	timeout   time.Duration
}

// NewDiscordSession creates a REST-only Discord session for a bot token
func NewDiscordSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return session, nil
}

// NewDiscordAnnouncer creates an announcer sending to channelID
func NewDiscordAnnouncer(sender MessageSender, channelID string) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		sender:    sender,
		channelID: channelID,
		timeout:   10 * time.Second,
	}
}

// Register subscribes the announcer to finished games
func (a *DiscordAnnouncer) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeGameFinished, a.Handle)
}

// Handle posts the announcement for a finished game
func (a *DiscordAnnouncer) Handle(ctx context.Context, event events.Event) {
	finished, ok := event.(events.GameFinishedEvent)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if _, err := a.sender.ChannelMessageSend(a.channelID, FormatResult(finished), discordgo.WithContext(ctx)); err != nil {
		log.WithFields(log.Fields{
			"gameID":    finished.GameID,
			"channelID": a.channelID,
			"error":     err,
		}).Error("Failed to announce game result")
		return
	}

	log.WithField("gameID", finished.GameID).Debug("Announced game result")
}

// FormatResult renders the one-line announcement
func FormatResult(e events.GameFinishedEvent) string {
	if e.Won {
		return fmt.Sprintf("🎉 **%s** guessed %d in %s mode using %d/%d attempts and %d hints. Score: **%d**",
			e.Owner, e.Secret, e.Mode, e.AttemptsUsed, e.MaxAttempts, e.UsedHints, e.Score)
	}
	return fmt.Sprintf("💀 **%s** ran out of attempts in %s mode. The number was %d. Score: **%d**",
		e.Owner, e.Mode, e.Secret, e.Score)
}
