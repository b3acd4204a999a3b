package usecase

import (
	"encoding/json"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

// The gateway delivers events in three observed wire shapes. Each shape
// has one conversion function keyed off its discriminant; anything else
// normalizes to EnvelopeUnknown, which callers treat as a valid,
// ignorable terminal state. No shape guessing beyond the discriminants.

type flatEnvelope struct {
	Type       string `json:"type"`
	InstanceID string `json:"instanceId"`
	MessageID  string `json:"messageId"`
	ChatID     string `json:"chatId"`
	Sender     string `json:"sender"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
	IsGroup    bool   `json:"isGroup"`
	MediaType  string `json:"mediaType"`
}

type nestedEnvelope struct {
	Event    string `json:"event"`
	Instance string `json:"instance"`
	Data     struct {
		Message struct {
			ID        string `json:"id"`
			ChatID    string `json:"chat_id"`
			From      string `json:"from"`
			PushName  string `json:"push_name"`
			Body      string `json:"body"`
			Timestamp int64  `json:"t"`
			MediaType string `json:"media_type"`
		} `json:"message"`
	} `json:"data"`
}

type legacyEnvelope struct {
	InstanceID string `json:"instanceId"`
	Messages   []struct {
		ID         string `json:"id"`
		ChatID     string `json:"chatId"`
		Author     string `json:"author"`
		SenderName string `json:"senderName"`
		Body       string `json:"body"`
		Time       int64  `json:"time"`
		FromMe     bool   `json:"fromMe"`
		ChatName   string `json:"chatName"`
		Type       string `json:"type"`
	} `json:"messages"`
}

// ExtractInstanceID pulls the embedded gateway instance identifier out of
// a raw payload without committing to a shape. Returns "" when absent.
func ExtractInstanceID(payload []byte) string {
	var probe struct {
		InstanceID string `json:"instanceId"`
		Instance   string `json:"instance"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}
	if probe.InstanceID != "" {
		return probe.InstanceID
	}
	return probe.Instance
}

// Normalize converts a raw payload into the canonical message shape.
// Malformed JSON and unrecognized shapes return EnvelopeUnknown with a nil
// message; Normalize never panics on hostile input.
func Normalize(payload []byte) (*domain.CanonicalMessage, domain.EnvelopeKind) {
	var discriminant struct {
		Type     string          `json:"type"`
		Event    string          `json:"event"`
		Data     json.RawMessage `json:"data"`
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(payload, &discriminant); err != nil {
		return nil, domain.EnvelopeUnknown
	}

	switch {
	case len(discriminant.Messages) > 0:
		return normalizeLegacy(payload)
	case discriminant.Event != "" && len(discriminant.Data) > 0:
		return normalizeNested(payload)
	case discriminant.Type == "message":
		return normalizeFlat(payload)
	default:
		return nil, domain.EnvelopeUnknown
	}
}

func normalizeFlat(payload []byte) (*domain.CanonicalMessage, domain.EnvelopeKind) {
	var env flatEnvelope
	if err := json.Unmarshal(payload, &env); err != nil || env.MessageID == "" {
		return nil, domain.EnvelopeUnknown
	}
	msg := &domain.CanonicalMessage{
		ID:            env.MessageID,
		ChannelID:     env.ChatID,
		SenderAddress: env.Sender,
		SenderDisplay: env.SenderName,
		Text:          env.Text,
		IsGroup:       env.IsGroup || domain.IsChannelAddress(env.ChatID),
		MediaKind:     mediaKind(env.MediaType),
	}
	fillTimestamp(msg, env.Timestamp)
	msg.IsStatusBroadcast = domain.IsStatusBroadcastAddress(env.ChatID)
	return msg, domain.EnvelopeFlat
}

func normalizeNested(payload []byte) (*domain.CanonicalMessage, domain.EnvelopeKind) {
	var env nestedEnvelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Data.Message.ID == "" {
		return nil, domain.EnvelopeUnknown
	}
	m := env.Data.Message
	msg := &domain.CanonicalMessage{
		ID:            m.ID,
		ChannelID:     m.ChatID,
		SenderAddress: m.From,
		SenderDisplay: m.PushName,
		Text:          m.Body,
		IsGroup:       domain.IsChannelAddress(m.ChatID),
		MediaKind:     mediaKind(m.MediaType),
	}
	fillTimestamp(msg, m.Timestamp)
	msg.IsStatusBroadcast = domain.IsStatusBroadcastAddress(m.ChatID)
	return msg, domain.EnvelopeNested
}

func normalizeLegacy(payload []byte) (*domain.CanonicalMessage, domain.EnvelopeKind) {
	var env legacyEnvelope
	if err := json.Unmarshal(payload, &env); err != nil || len(env.Messages) == 0 {
		return nil, domain.EnvelopeUnknown
	}
	m := env.Messages[0]
	if m.ID == "" {
		return nil, domain.EnvelopeUnknown
	}
	msg := &domain.CanonicalMessage{
		ID:            m.ID,
		ChannelID:     m.ChatID,
		SenderAddress: m.Author,
		SenderDisplay: m.SenderName,
		Text:          m.Body,
		IsGroup:       domain.IsChannelAddress(m.ChatID),
		MediaKind:     mediaKind(m.Type),
	}
	fillTimestamp(msg, m.Time)
	msg.IsStatusBroadcast = domain.IsStatusBroadcastAddress(m.ChatID)
	return msg, domain.EnvelopeLegacy
}

// fillTimestamp records the protocol timestamp when it is plausible and
// substitutes local time otherwise. Some gateway builds report epoch
// milliseconds or zero here, so plausibility is an explicit check, not an
// assumption.
func fillTimestamp(msg *domain.CanonicalMessage, ts int64) {
	const (
		minPlausible = 1_000_000_000  // 2001-09-09
		maxPlausible = 10_000_000_000 // 2286-11-20, past this it is millis
	)
	if ts >= minPlausible && ts < maxPlausible {
		msg.TimestampSeconds = ts
		msg.TimestampReliable = true
		return
	}
	if ts >= maxPlausible { // millisecond timestamp, scale down
		msg.TimestampSeconds = ts / 1000
		msg.TimestampReliable = true
		return
	}
	msg.TimestampSeconds = time.Now().Unix()
	msg.TimestampReliable = false
}

func mediaKind(wire string) domain.MediaKind {
	switch wire {
	case "", "chat", "text":
		return domain.MediaText
	case "image":
		return domain.MediaImage
	default:
		return domain.MediaOther
	}
}
