package logger

const NA = "N/A"

// log level
const (
	LL_ERROR = iota
	LL_FATAL
	LL_INFO
	LL_DEBUG
)

// log stream
const (
	LS_CHAIN = iota
	LS_PROJECTOR
	LS_WEBHOOKS
	LS_API
	LS_FATAL
)

type Logstream uint8
type LogLevel uint8

func (l Logstream) ToString() string {
	return [...]string{"chain", "projector", "webhooks", "api", "fatal"}[l]
}

func (l LogLevel) ToString() string {
	return [...]string{"ERROR", "FATAL", "INFO", "DEBUG"}[l]
}
