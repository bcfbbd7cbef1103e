package discgo

import (
	"context"
	"fmt"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"github.com/diamondburned/arikawa/v3/utils/sendpart"
	"go.uber.org/zap"

	"vitalog/tracker/defs"
)

const TimeFormat = "2006-01-02 03:04 PM"

type Discord struct {
	Session  *session.Session
	Logger   *zap.Logger
	Location *time.Location

	gid      discord.GuildID
	channels map[string]discord.ChannelID
}

type Messager interface {
	SendMessage(data defs.MessageData, chName string) (uint64, error)
}

func New(token, guildID string, logger *zap.Logger, loc *time.Location) (*Discord, error) {
	ses := session.NewWithIntents("Bot "+token, gateway.IntentGuilds, gateway.IntentGuildMessages)

	if err := ses.Open(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to open session: %w", err)
	}

	sf, err := discord.ParseSnowflake(guildID)
	if err != nil {
		return nil, err
	}

	return &Discord{
		Session:  ses,
		Logger:   logger,
		Location: loc,
		gid:      discord.GuildID(sf),
	}, nil
}

// Setup ensures the given channels exist in the guild, creating any that are
// missing, and caches their ids for sends.
func (d *Discord) Setup(channels []string) error {
	d.channels = make(map[string]discord.ChannelID)

	existChannels, err := d.Session.Channels(d.gid)
	if err != nil {
		return fmt.Errorf("unable to get channels: %w", err)
	}
	for _, ch := range existChannels {
		d.channels[ch.Name] = ch.ID
	}

	for _, chName := range channels {
		if _, ok := d.channels[chName]; !ok {
			d.Logger.Debug("creating channel", zap.String("channel name", chName))
			ch, err := d.Session.CreateChannel(d.gid, api.CreateChannelData{
				Name: chName,
				Type: discord.GuildText,
			})
			if err != nil {
				return fmt.Errorf("unable to create channel %s: %w", chName, err)
			}
			d.channels[chName] = ch.ID
		}
	}

	d.Logger.Debug("discord setup complete")
	return nil
}

func (d *Discord) SendMessage(data defs.MessageData, chName string) (uint64, error) {
	msgData := d.marshalSendData(data)
	msg, err := d.Session.SendMessageComplex(d.channels[chName], msgData)
	if err != nil {
		return 0, err
	}
	d.Logger.Debug("sent message", zap.String("channel name", chName))
	return uint64(msg.ID), nil
}

// marshalSendData transforms data of type defs.MessageData to api.SendMessageData
// which arikawa expects.
func (d *Discord) marshalSendData(data defs.MessageData) api.SendMessageData {
	embeds := make([]discord.Embed, 0)
	for _, embed := range data.Embeds {
		fields := make([]discord.EmbedField, 0)

		for _, field := range embed.Fields {
			dField := discord.EmbedField{
				Name:   field.Name,
				Value:  field.Value,
				Inline: field.Inline,
			}
			fields = append(fields, dField)
		}

		dEmbed := discord.Embed{
			Title:       embed.Title,
			Description: embed.Description,
			Fields:      fields,
		}

		embeds = append(embeds, dEmbed)
	}

	files := make([]sendpart.File, 0)
	for _, file := range data.Files {
		files = append(files, sendpart.File{
			Name:   file.Name,
			Reader: file.Reader,
		})
	}

	md := api.SendMessageData{
		Content: data.Content,
		Embeds:  embeds,
		Files:   files,
	}

	if data.MentionEveryone {
		md.AllowedMentions = &api.AllowedMentions{
			Parse: []api.AllowedMentionType{api.AllowEveryoneMention},
		}
	}

	return md
}
