package types

// MaxAudioChannels is the channel count audio is downmixed to before it
// reaches an AudioSink.
const MaxAudioChannels = 2

// OutputAudioChannels returns the channel count of the PCM produced for a
// stream with the given channel count.
func OutputAudioChannels(channels int) int {
	if channels <= 0 || channels > MaxAudioChannels {
		return MaxAudioChannels
	}
	return channels
}
