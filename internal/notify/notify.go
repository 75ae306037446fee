// notify доставляет коды сброса пароля пользователю.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/pkg/log"
	"github.com/pribylovaa/paleta/internal/pkg/redact"
)

// ErrUnsupportedChannel — отправитель не обслуживает канал.
var ErrUnsupportedChannel = errors.New("unsupported channel")

// Message — код сброса для доставки.
type Message struct {
	Channel     models.Channel
	Destination string
	Code        string
}

// Sender — контракт доставки.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Log пишет факт доставки в лог без самого кода. Используется в local/dev
// и для каналов без настоящего провайдера.
type Log struct{}

// Send логирует замаскированный адрес.
func (Log) Send(ctx context.Context, msg Message) error {
	log.From(ctx).Info("reset_code_delivery",
		slog.String("sender", "log"),
		slog.String("channel", string(msg.Channel)),
		slog.String("destination", redact.Destination(msg.Destination)),
		slog.String("code", redact.Code()),
	)

	return nil
}

// ByChannel направляет сообщение отправителю его канала.
type ByChannel map[models.Channel]Sender

// Send выбирает отправителя по msg.Channel.
func (b ByChannel) Send(ctx context.Context, msg Message) error {
	const op = "notify.ByChannel.Send"

	s, ok := b[msg.Channel]
	if !ok {
		return fmt.Errorf("%s: %w: %s", op, ErrUnsupportedChannel, msg.Channel)
	}

	return s.Send(ctx, msg)
}
