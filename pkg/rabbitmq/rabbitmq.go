package rabbitmq

import (
	"encoding/json"

	"github.com/streadway/amqp"
)

// 遵循：项目名.业务领域.实体/功能
const (
	QueueWatchProgress = "yourtube.watch_progress.queue"
	QueueMediaCleanup  = "yourtube.media_cleanup.queue"
)

// InitRabbitMQ 初始化RabbitMQ连接
func InitRabbitMQ(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// DeclareQueues 声明所有用到的持久化队列，幂等
func DeclareQueues(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	for _, q := range []string{QueueWatchProgress, QueueMediaCleanup} {
		// durable=true，RabbitMQ重启后队列还在
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return err
		}
	}
	return nil
}

// Publisher 把消息序列化成JSON投递到默认交换机
type Publisher interface {
	Publish(queue string, msg interface{}) error
}

type publisher struct {
	conn *amqp.Connection
}

func NewPublisher(conn *amqp.Connection) Publisher {
	return &publisher{conn: conn}
}

// 每条消息单独开一个channel，发完即关，消息之间互不影响
func (p *publisher) Publish(queue string, msg interface{}) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return ch.Publish(
		"",    // exchange默认交换机
		queue, // routing key即队列名
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
}
