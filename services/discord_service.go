package services

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"nodepulse/models"
)

// DiscordNotifier pushes alert events to a Discord channel. Missing
// credentials leave it disabled rather than failing startup - Discord is
// strictly optional.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	enabled   bool
}

func NewDiscordNotifier(token string, channelID string) (*DiscordNotifier, error) {
	if token == "" || channelID == "" {
		log.Println("Discord token or channel not provided, Discord notifications disabled")
		return &DiscordNotifier{enabled: false}, nil
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open Discord connection: %w", err)
	}

	log.Printf("Discord bot connected, notifying channel %s", channelID)

	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		enabled:   true,
	}, nil
}

func (d *DiscordNotifier) Enabled() bool {
	return d != nil && d.enabled
}

func (d *DiscordNotifier) Close() {
	if d.Enabled() {
		log.Println("Closing Discord bot connection...")
		d.session.Close()
	}
}

// SendAlert posts one alert event as an embed.
func (d *DiscordNotifier) SendAlert(event models.AlertEvent) error {
	if !d.Enabled() {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("[%s] %s", event.Severity, event.Kind),
		Color: severityColor(event.Severity),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Device", Value: event.DeviceID, Inline: true},
			{Name: "Time", Value: event.Timestamp.Format("2006-01-02 15:04:05 MST"), Inline: true},
		},
		Description: event.Message,
	}

	_, err := d.session.ChannelMessageSendEmbed(d.channelID, embed)
	if err != nil {
		return fmt.Errorf("failed to send Discord alert: %w", err)
	}
	return nil
}

func severityColor(severity string) int {
	switch severity {
	case "critical":
		return 0xE74C3C // red
	case "warning":
		return 0xF39C12 // orange
	default:
		return 0x3498DB // blue
	}
}
