package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "reflect"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// LogDir and LogFile locate the append-only event log.
var (
    LogDir  = "logs"
    LogFile = "planner.log"
)

// BrokerURL resolves the RabbitMQ URL from RABBITMQ_URL or AMQP_URL.
// An empty result means no broker is configured.
func BrokerURL() string {
    if url := os.Getenv("RABBITMQ_URL"); url != "" {
        return url
    }
    return os.Getenv("AMQP_URL")
}

// StartConsumer connects to RabbitMQ, declares every planner queue
// (durable) and consumes them. Each message is appended to
// logs/planner.log as one line. The function runs a reconnect loop with
// exponential backoff and never returns; processing errors are logged and
// the offending message is rejected.
func StartConsumer(url string) {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("planner-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        if err := consumeLoop(conn); err != nil {
            log.Printf("planner-consumer: consume loop ended: %v; reconnecting", err)
            _ = conn.Close()
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("planner-consumer: set QoS failed: %v", err)
    }

    cases := make([]reflect.SelectCase, 0, len(Queues))
    for _, name := range Queues {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(msgs)})
    }

    for {
        i, v, ok := reflect.Select(cases)
        if !ok {
            return errors.New("deliveries channel closed")
        }
        d := v.Interface().(amqp.Delivery)
        if err := HandleMessage(Queues[i], d.Body); err != nil {
            log.Printf("planner-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
}

// HandleMessage decodes one event body from the named queue and appends
// its log line. Unknown queues are an error.
func HandleMessage(queueName string, body []byte) error {
    line, err := formatLine(queueName, body)
    if err != nil {
        return err
    }
    if err := os.MkdirAll(LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(LogDir, LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(queueName string, body []byte) (string, error) {
    switch queueName {
    case PlanSavedQueue:
        var ev PlanSavedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Plan saved | plan_id=%s | user_id=%s | title=%q | destination=%q | days=%d | budget=%.0f\n",
            ev.SavedAt, ev.PlanID, ev.UserID, ev.Title, ev.Destination, ev.NumDays, ev.Budget), nil
    case ItineraryGeneratedQueue:
        var ev ItineraryGeneratedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Itinerary generated | request_id=%s | route=%q->%q | days=%d | people=%d | revision=%t | real_flights=%t | total=%d %s\n",
            ev.GeneratedAt, ev.RequestID, ev.Departure, ev.Destination, ev.NumDays, ev.NumPeople, ev.Revision, ev.FlightsReal, ev.GrandTotal, ev.Currency), nil
    }
    return "", fmt.Errorf("unknown queue %q", queueName)
}
