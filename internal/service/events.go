package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    "github.com/ThreeDotsLabs/watermill"
    "github.com/ThreeDotsLabs/watermill/message"
    "github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/ai-travel-planner/internal/queue"
)

// Publisher delivers domain events to a named queue. Callers treat
// failures as non-fatal: the event is logged and dropped.
type Publisher interface {
    Publish(ctx context.Context, queueName string, event any) error
}

// AMQPPublisher publishes events to RabbitMQ. It dials per publish so a
// broker outage never wedges a long-lived connection.
type AMQPPublisher struct {
    URL string
}

// Publish marshals event and sends it as a persistent JSON message to the
// queue of the same name on the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, queueName string, event any) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// LocalPublisher routes events through an in-process watermill channel to
// the same handler the broker consumer uses. It stands in for RabbitMQ
// when no broker URL is configured.
type LocalPublisher struct {
    pubSub *gochannel.GoChannel
    cancel context.CancelFunc
    done   chan struct{}
}

// NewLocalPublisher subscribes handle to every planner queue. A nil handle
// uses queue.HandleMessage.
func NewLocalPublisher(handle func(queueName string, body []byte) error) (*LocalPublisher, error) {
    if handle == nil {
        handle = queue.HandleMessage
    }
    pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewStdLogger(false, false))
    ctx, cancel := context.WithCancel(context.Background())
    lp := &LocalPublisher{pubSub: pubSub, cancel: cancel, done: make(chan struct{})}

    subs := make([]<-chan *message.Message, 0, len(queue.Queues))
    for _, name := range queue.Queues {
        msgs, err := pubSub.Subscribe(ctx, name)
        if err != nil {
            cancel()
            return nil, err
        }
        subs = append(subs, msgs)
    }

    remaining := len(subs)
    finished := make(chan struct{}, len(subs))
    for i, msgs := range subs {
        name := queue.Queues[i]
        go func(msgs <-chan *message.Message) {
            defer func() { finished <- struct{}{} }()
            for msg := range msgs {
                if err := handle(name, msg.Payload); err != nil {
                    log.Printf("events: local handler %s: %v", name, err)
                }
                msg.Ack()
            }
        }(msgs)
    }
    go func() {
        for ; remaining > 0; remaining-- {
            <-finished
        }
        close(lp.done)
    }()
    return lp, nil
}

func (p *LocalPublisher) Publish(_ context.Context, queueName string, event any) error {
    body, err := json.Marshal(event)
    if err != nil {
        return err
    }
    return p.pubSub.Publish(queueName, message.NewMessage(watermill.NewUUID(), body))
}

// Close stops the subscribers after in-flight messages are handled.
func (p *LocalPublisher) Close() error {
    err := p.pubSub.Close()
    p.cancel()
    <-p.done
    return err
}

// NewPublisher picks RabbitMQ when url is set and the in-process channel
// otherwise.
func NewPublisher(url string) (Publisher, error) {
    if url != "" {
        return &AMQPPublisher{URL: url}, nil
    }
    return NewLocalPublisher(nil)
}
