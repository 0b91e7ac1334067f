package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xaionaro-go/avplayer/player"
)

func formatStreamStatistics(name string, s *player.StreamStatistics) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf(
		" %s: %s presented, %s queued (%d buffered), %s stale, %s dropped, %d errors;",
		name,
		humanize.Comma(int64(s.Presented)),
		humanize.Comma(int64(s.Queued)),
		s.QueueSize,
		humanize.Comma(int64(s.Stale)),
		humanize.Comma(int64(s.Dropped)),
		s.DecodeErrors+s.SinkErrors,
	)
}

func printStatus(
	w io.Writer,
	position, duration time.Duration,
	stats player.Statistics,
) {
	fmt.Fprintf(
		w,
		"%s / %s; read %s units;%s%s\n",
		position.Truncate(time.Millisecond),
		duration.Truncate(time.Second),
		humanize.Comma(int64(stats.UnitsRead)),
		formatStreamStatistics("video", stats.Video),
		formatStreamStatistics("audio", stats.Audio),
	)
}
