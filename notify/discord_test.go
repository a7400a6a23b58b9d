package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"guesser/events"
	"guesser/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

var finishedWin = events.GameFinishedEvent{
	GameID:       "4b0a2c1e-7f33-4a57-9ad2-5c0d1c6f8e11",
	Owner:        models.NewGuestOwner("Guest-1234"),
	Mode:         "easy",
	Secret:       42,
	Won:          true,
	Score:        9100,
	AttemptsUsed: 3,
	MaxAttempts:  10,
	UsedHints:    1,
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t,
		"🎉 **Guest-1234** guessed 42 in easy mode using 3/10 attempts and 1 hints. Score: **9100**",
		FormatResult(finishedWin))

	loss := finishedWin
	loss.Won = false
	loss.Owner = models.NewUserOwner(7)
	loss.Score = 4000
	assert.Equal(t,
		"💀 **user:7** ran out of attempts in easy mode. The number was 42. Score: **4000**",
		FormatResult(loss))
}

func TestDiscordAnnouncer_Handle(t *testing.T) {
	sender := new(mockSender)
	announcer := NewDiscordAnnouncer(sender, "123456")

	sender.On("ChannelMessageSend", "123456", FormatResult(finishedWin)).Return(&discordgo.Message{ID: "1"}, nil)

	announcer.Handle(context.Background(), finishedWin)

	sender.AssertExpectations(t)
}

func TestDiscordAnnouncer_Handle_IgnoresOtherEvents(t *testing.T) {
	sender := new(mockSender)
	announcer := NewDiscordAnnouncer(sender, "123456")

	announcer.Handle(context.Background(), events.GameStartedEvent{GameID: "a"})

	sender.AssertNotCalled(t, "ChannelMessageSend", mock.Anything, mock.Anything)
}

func TestDiscordAnnouncer_Handle_SendErrorIsLogged(t *testing.T) {
	sender := new(mockSender)
	announcer := NewDiscordAnnouncer(sender, "123456")

	sender.On("ChannelMessageSend", "123456", mock.Anything).Return(nil, errors.New("HTTP 403 Forbidden"))

	assert.NotPanics(t, func() {
		announcer.Handle(context.Background(), finishedWin)
	})
	sender.AssertExpectations(t)
}

func TestDiscordAnnouncer_Register(t *testing.T) {
	sender := new(mockSender)
	announcer := NewDiscordAnnouncer(sender, "123456")
	bus := events.NewBus()
	announcer.Register(bus)

	done := make(chan struct{})
	sender.On("ChannelMessageSend", "123456", mock.Anything).
		Run(func(mock.Arguments) { close(done) }).
		Return(&discordgo.Message{}, nil)

	bus.Emit(context.Background(), finishedWin)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("announcement not sent")
	}
}

func TestNewDiscordSession(t *testing.T) {
	session, err := NewDiscordSession("token")

	assert.NoError(t, err)
	assert.Equal(t, "Bot token", session.Identify.Token)
}
