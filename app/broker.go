package app

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/NikhilSharmaWe/rabbitmq"
	"github.com/engineq/engineq/models"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// GenerationQueue is the well-known queue the generation worker consumes.
const GenerationQueue = "acura"

type JobPublisher interface {
	Publish(ctx context.Context, job models.GenerationJob) error
}

// GenerationPublisher publishes generation jobs over a process-wide RabbitMQ
// connection. The connection and channel are established once, on the first
// publish, and reused for the life of the process; a publisher that fails to
// connect keeps returning the dial error instead of retrying.
type GenerationPublisher struct {
	user     string
	password string
	addr     string
	vhost    string

	once    sync.Once
	initErr error
	client  *rabbitmq.RabbitClient
}

func NewGenerationPublisher() *GenerationPublisher {
	return &GenerationPublisher{
		user:     os.Getenv("RABBITMQ_USER"),
		password: os.Getenv("RABBITMQ_PASSWORD"),
		addr:     os.Getenv("RABBITMQ_ADDR"),
		vhost:    os.Getenv("RABBITMQ_VHOST"),
	}
}

func (p *GenerationPublisher) connect() error {
	p.once.Do(func() {
		conn, err := rabbitmq.ConnectRabbitMQ(p.user, p.password, p.addr, p.vhost)
		if err != nil {
			p.initErr = err
			return
		}

		client, err := rabbitmq.CreateNewQueueReturnClient(conn, GenerationQueue, true, false)
		if err != nil {
			p.initErr = err
			return
		}

		p.client = client
	})

	return p.initErr
}

func (p *GenerationPublisher) Publish(ctx context.Context, job models.GenerationJob) error {
	if err := p.connect(); err != nil {
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.client.Send(ctx, "", GenerationQueue, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
}
