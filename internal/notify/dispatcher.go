package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier 알림 전달. 호출자는 결과를 기다리지 않는다.
type Notifier interface {
	Notify(msg Message)
}

// Dispatcher 비동기 전송기. 버퍼가 가득 차면 알림을 버린다.
// 전송 실패는 로그만 남기고 상태에는 영향을 주지 않는다.
type Dispatcher struct {
	sender  Sender
	logger  *zap.Logger
	timeout time.Duration

	queue  chan Message
	wg     sync.WaitGroup
	once   sync.Once
	closed chan struct{}
}

// NewDispatcher 전송 워커를 띄운다. Close 로 종료해야 한다.
func NewDispatcher(sender Sender, queueSize int, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		timeout: timeout,
		queue:   make(chan Message, queueSize),
		closed:  make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) Notify(msg Message) {
	select {
	case <-d.closed:
		return
	default:
	}
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("알림 대기열이 가득 차 버림", zap.String("title", msg.Title))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case msg := <-d.queue:
			d.send(msg)
		case <-d.closed:
			// 남은 알림 전송 후 종료
			for {
				select {
				case msg := <-d.queue:
					d.send(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Warn("알림 전송 실패", zap.String("title", msg.Title), zap.Error(err))
		return
	}
	d.logger.Debug("알림 전송", zap.String("title", msg.Title))
}

// Close 대기열을 비우고 워커를 종료한다.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.closed) })
	d.wg.Wait()
}
