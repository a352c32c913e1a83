package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
)

// Evento é o envelope publicado na fila a cada mutação do store.
// O serviço de websocket consome e repassa o corpo como chegou.
type Evento struct {
	Tipo          string                `json:"tipo"`
	Movimentacoes []models.Movimentacao `json:"movimentacoes,omitempty"`
	EmitidoEm     time.Time             `json:"emitidoEm"`
}

const (
	EventoRealocacao = "realocacao"
	EventoImportacao = "importacao"
)

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(uri, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	// Garante que a fila exista (durável)
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Publish(ctx context.Context, body []byte, headers amqp.Table) error {
	if ctx == nil {
		c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ctx = c
	}
	return p.ch.PublishWithContext(
		ctx,
		"",      // default exchange
		p.queue, // routing key = nome da fila
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			Headers:      headers,
		},
	)
}

// PublicarEvento serializa e publica com o tipo no header.
func (p *Publisher) PublicarEvento(ctx context.Context, ev Evento) error {
	if ev.EmitidoEm.IsZero() {
		ev.EmitidoEm = time.Now()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Publish(ctx, body, amqp.Table{"tipo": ev.Tipo})
}

func (p *Publisher) Close() error {
	var errCh, errConn error
	if p.ch != nil {
		errCh = p.ch.Close()
	}
	if p.conn != nil {
		errConn = p.conn.Close()
	}

	return errors.Join(errCh, errConn)
}
