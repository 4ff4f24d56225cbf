package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadJoinedPayload is published once per newly created lead.
type LeadJoinedPayload struct {
	LeadID         string   `json:"lead_id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	JobTitle       string   `json:"job_title,omitempty"`
	Organization   string   `json:"organization,omitempty"`
	ToolsUsed      []string `json:"tools_used"`
	DesiredChanges string   `json:"desired_changes,omitempty"`
	ReferralCode   string   `json:"referral_code"`
	ReferredBy     string   `json:"referred_by,omitempty"`
	IdealLoi       bool     `json:"ideal_loi"`
	Score          int      `json:"score"`
	UTMSource      string   `json:"utm_source,omitempty"`
	UTMCampaign    string   `json:"utm_campaign,omitempty"`
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadJoined(ctx context.Context, payload LeadJoinedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    payload.LeadID,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}
	return nil
}
