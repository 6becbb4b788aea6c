package internal

type LogHandler interface {
	FeatureEvent(feature, serial, text string)
	Debug(text string)
	Warn(text string)
	Error(text string, err error)
	RawDataEvent(direction, data string)
}
