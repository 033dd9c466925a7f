package logger

import (
	"bytes"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	lineEncoding = "u2a-line"
	timeLayout   = "2006-01-02 15:04:05"
)

var linePool = buffer.NewPool()

func init() {
	if err := zap.RegisterEncoder(lineEncoding, func(zapcore.EncoderConfig) (zapcore.Encoder, error) {
		return NewLineEncoder(), nil
	}); err != nil {
		panic(err)
	}
}

// lineEncoder 输出 "<timestamp> [<target>][<level>] <message>"
// 附加字段由内嵌的 JSON encoder 累积，非空时以 JSON 对象追加在消息之后
type lineEncoder struct {
	zapcore.Encoder
}

// NewLineEncoder 创建行格式 encoder
func NewLineEncoder() zapcore.Encoder {
	return &lineEncoder{
		Encoder: zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		}),
	}
}

func (e *lineEncoder) Clone() zapcore.Encoder {
	return &lineEncoder{Encoder: e.Encoder.Clone()}
}

func (e *lineEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := linePool.Get()
	line.AppendString(ent.Time.Format(timeLayout))
	line.AppendString(" [")
	line.AppendString(ent.LoggerName)
	line.AppendString("][")
	line.AppendString(ent.Level.CapitalString())
	line.AppendString("] ")
	line.AppendString(ent.Message)

	extra, err := e.Encoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		line.Free()
		return nil, err
	}
	obj := bytes.TrimRight(extra.Bytes(), "\r\n")
	if len(obj) > 2 {
		line.AppendByte(' ')
		_, _ = line.Write(obj)
	}
	extra.Free()

	if ent.Stack != "" {
		line.AppendByte('\n')
		line.AppendString(ent.Stack)
	}
	line.AppendByte('\n')
	return line, nil
}
