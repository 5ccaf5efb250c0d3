package logger

import "fmt"

// CronLogger 把 Logger 适配为 cron.Logger
type CronLogger struct {
	L Logger
}

func (c CronLogger) Info(msg string, keysAndValues ...any) {
	c.L.Debug(msg, pairs(keysAndValues)...)
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.L.Error(msg, append(pairs(keysAndValues), Error(err))...)
}

func pairs(kv []any) []Field {
	fields := make([]Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
