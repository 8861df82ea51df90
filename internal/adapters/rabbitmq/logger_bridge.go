package rabbitmq_adapter

import (
	"fmt"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/port"
	"listing-web/pkg/rabbitmq/rabbitmq_common"
)

// brokerLogger передает логи pkg/rabbitmq (пары ключ-значение) в LoggerPort сервиса
type brokerLogger struct {
	logger port.LoggerPort
}

func NewPkgLoggerBridge(logger port.LoggerPort) rabbitmq_common.Logger {
	if logger == nil {
		logger = contextkeys.NoopLogger()
	}
	return &brokerLogger{logger: logger}
}

// brokerFields превращает пары в поля. Нестроковый ключ приводится к строке,
// ключ без значения попадает в поле "extra", ошибки пишутся текстом.
func brokerFields(keysAndValues []interface{}) port.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(port.Fields, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 == len(keysAndValues) {
			fields["extra"] = keysAndValues[i]
			break
		}
		key := fmt.Sprint(keysAndValues[i])
		if err, ok := keysAndValues[i+1].(error); ok {
			fields[key] = err.Error()
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

func (b *brokerLogger) Debug(msg string, keysAndValues ...interface{}) {
	b.logger.Debug(msg, brokerFields(keysAndValues))
}

func (b *brokerLogger) Info(msg string, keysAndValues ...interface{}) {
	b.logger.Info(msg, brokerFields(keysAndValues))
}

func (b *brokerLogger) Warn(msg string, keysAndValues ...interface{}) {
	b.logger.Warn(msg, brokerFields(keysAndValues))
}

func (b *brokerLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	b.logger.Error(msg, err, brokerFields(keysAndValues))
}
