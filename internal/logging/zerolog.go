package logging

import (
	"time"

	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

type (
	// Event adapts a zerolog event to logiface.
	Event struct {
		//lint:ignore U1000 embedded for it's methods
		unimplementedEvent

		Z   *zerolog.Event
		lvl logiface.Level
		msg string
	}

	// ZerologLogger is the logiface event factory and writer, backed by a
	// zerolog.Logger.
	ZerologLogger struct {
		Z zerolog.Logger
	}

	// LoggerFactory embeds logiface.LoggerFactory[*Event], adding the
	// options implemented by this package.
	LoggerFactory struct {
		//lint:ignore U1000 embedded for it's methods
		baseLoggerFactory
	}

	//lint:ignore U1000 used to embed without exporting
	unimplementedEvent = logiface.UnimplementedEvent

	//lint:ignore U1000 used to embed without exporting
	baseLoggerFactory = logiface.LoggerFactory[*Event]
)

var (
	// L configures a logiface.Logger[*Event], see also WithZerolog.
	L = LoggerFactory{}

	// compile time assertions

	_ logiface.Event                = (*Event)(nil)
	_ logiface.EventFactory[*Event] = (*ZerologLogger)(nil)
	_ logiface.Writer[*Event]       = (*ZerologLogger)(nil)
)

// WithZerolog configures a logiface logger to write via the given zerolog
// logger.
func WithZerolog(z zerolog.Logger) logiface.Option[*Event] {
	l := ZerologLogger{Z: z}
	return L.WithOptions(
		L.WithEventFactory(&l),
		L.WithWriter(&l),
	)
}

// WithZerolog is an alias of the package function of the same name.
func (LoggerFactory) WithZerolog(z zerolog.Logger) logiface.Option[*Event] {
	return WithZerolog(z)
}

func (x *Event) Level() logiface.Level {
	if x != nil {
		return x.lvl
	}
	return logiface.LevelDisabled
}

func (x *Event) AddField(key string, val any) {
	x.Z.Interface(key, val)
}

func (x *Event) AddMessage(msg string) bool {
	x.msg = msg
	return true
}

func (x *Event) AddError(err error) bool {
	x.Z.Err(err)
	return true
}

func (x *Event) AddString(key string, val string) bool {
	x.Z.Str(key, val)
	return true
}

func (x *Event) AddInt(key string, val int) bool {
	x.Z.Int(key, val)
	return true
}

func (x *Event) AddInt64(key string, val int64) bool {
	x.Z.Int64(key, val)
	return true
}

func (x *Event) AddBool(key string, val bool) bool {
	x.Z.Bool(key, val)
	return true
}

func (x *Event) AddDuration(key string, val time.Duration) bool {
	x.Z.Dur(key, val)
	return true
}

func (x *Event) AddTime(key string, val time.Time) bool {
	x.Z.Time(key, val)
	return true
}

func (x *ZerologLogger) NewEvent(level logiface.Level) *Event {
	if !level.Enabled() {
		return nil
	}
	r := Event{
		lvl: level,
	}
	switch level {
	case logiface.LevelTrace:
		r.Z = x.Z.Trace()
	case logiface.LevelDebug:
		r.Z = x.Z.Debug()
	case logiface.LevelInformational:
		r.Z = x.Z.Info()
	case logiface.LevelNotice, logiface.LevelWarning:
		r.Z = x.Z.Warn()
	case logiface.LevelError:
		r.Z = x.Z.Error()
	case logiface.LevelCritical, logiface.LevelAlert, logiface.LevelEmergency:
		// WithLevel, unlike Fatal and Panic, never exits or panics
		r.Z = x.Z.WithLevel(zerolog.FatalLevel)
	default:
		// >= 9, translate to numeric levels in zerolog
		// (9 -> -2, 10 -> -3, etc)
		r.Z = x.Z.WithLevel(zerolog.Level(7 - level))
	}
	return &r
}

func (x *ZerologLogger) Write(event *Event) error {
	event.Z.Msg(event.msg)
	return nil
}
